package models

type Review struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"-" gorm:"not null;index"`
	Score   int   `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	Authored

	Title Title `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}

// The one-review-per-(author,title) rule lives in a composite unique index
// created alongside AutoMigrate; see database.ConnectDB.
func (Review) TableName() string {
	return "reviews"
}
