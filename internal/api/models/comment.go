package models

type Comment struct {
	ID       int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID int64 `json:"-" gorm:"not null;index"`
	Authored

	Review Review `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}
