package models

import "time"

// Authored carries the fields shared by user-written content: the author,
// the text body and the publish timestamp. Embedded by Review and Comment;
// both list newest-first on PubDate.
type Authored struct {
	AuthorID string    `json:"-" gorm:"type:uuid;not null;index"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	Author User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}
