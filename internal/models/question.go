package models

import (
	"fmt"
	"time"
)

// Question is a binary "would you rather" item owned by one author.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	Author        User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	OptionOneText string    `gorm:"size:255;not null" json:"option_one_text"`
	OptionTwoText string    `gorm:"size:255;not null" json:"option_two_text"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`

	Answers []Answer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Question) TableName() string {
	return "questions"
}

// String renders the question the way it is read out loud.
func (q *Question) String() string {
	return fmt.Sprintf("Would you rather %s or %s?", q.OptionOneText, q.OptionTwoText)
}
