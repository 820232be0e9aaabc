package models

// explicit join model between titles and genres (has its own id)
//
// The upstream schema this replaces kept join rows alive with NULL sides
// after a title or genre was removed; here both FKs cascade so the row
// disappears with either parent.
type TitleGenre struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"index;not null"`
	GenreID int64 `json:"genre_id" gorm:"index;not null"`

	Title Title `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Genre Genre `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
