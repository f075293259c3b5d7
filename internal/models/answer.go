package models

import (
	"fmt"
	"time"
)

// Option identifies one of the two choices of a question.
type Option string

const (
	// OptionOne selects the first option text.
	OptionOne Option = "optionOne"
	// OptionTwo selects the second option text.
	OptionTwo Option = "optionTwo"
)

// Valid reports whether o is one of the two enumerated options.
func (o Option) Valid() bool {
	return o == OptionOne || o == OptionTwo
}

// Label is the human-readable name of the option.
func (o Option) Label() string {
	switch o {
	case OptionOne:
		return "Option One"
	case OptionTwo:
		return "Option Two"
	default:
		return string(o)
	}
}

// Answer records which option one user picked for one question.
// At most one row exists per (user, question).
type Answer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_answers_user_question" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	QuestionID     uint      `gorm:"not null;uniqueIndex:idx_answers_user_question;index" json:"question_id"`
	Question       Question  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	OptionSelected Option    `gorm:"type:varchar(10);not null" json:"option_selected"`
	AnsweredAt     time.Time `gorm:"autoCreateTime;index" json:"answered_at"`
}

// TableName specifies the table name for GORM
func (Answer) TableName() string {
	return "answers"
}

func (a *Answer) String() string {
	return fmt.Sprintf("user %d answered %d", a.UserID, a.QuestionID)
}
