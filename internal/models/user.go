// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultAvatar is the media path used when a user has not uploaded an avatar.
const DefaultAvatar = "avatars/default.png"

// User represents an account in the Would You Rather application.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	FirstName   string    `gorm:"size:150" json:"first_name"`
	LastName    string    `gorm:"size:150" json:"last_name"`
	Avatar      string    `gorm:"size:255;default:'avatars/default.png'" json:"avatar"`
	Bio         string    `gorm:"size:500" json:"bio"`
	IsStaff     bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	DateJoined  time.Time `gorm:"autoCreateTime;index" json:"date_joined"`

	Questions []Question `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Answers   []Answer   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// FullName returns "First Last" when both parts are set, otherwise the username.
func (u User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// AvatarPath returns the avatar media path, falling back to the placeholder.
func (u User) AvatarPath() string {
	if u.Avatar == "" {
		return DefaultAvatar
	}
	return u.Avatar
}

// UserActivity is a user together with the counters derived from their questions and answers.
type UserActivity struct {
	UserID            uint   `json:"user_id"`
	Username          string `json:"username"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Avatar            string `json:"avatar"`
	QuestionsAsked    int64  `json:"questions_asked"`
	QuestionsAnswered int64  `json:"questions_answered"`
}

// TotalScore is the number of authored questions plus the number of answers given.
func (a UserActivity) TotalScore() int64 {
	return a.QuestionsAsked + a.QuestionsAnswered
}
