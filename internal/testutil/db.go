// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"wouldyourather/internal/database"
	"wouldyourather/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB returns an isolated, migrated in-memory SQLite database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts an active user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateQuestion inserts a question authored by author.
func CreateQuestion(t *testing.T, db *gorm.DB, author *models.User, one, two string) *models.Question {
	t.Helper()

	q := &models.Question{AuthorID: author.ID, OptionOneText: one, OptionTwoText: two}
	require.NoError(t, db.Create(q).Error)
	return q
}

// CreateAnswer records that user picked option on q.
func CreateAnswer(t *testing.T, db *gorm.DB, user *models.User, q *models.Question, option models.Option) *models.Answer {
	t.Helper()

	a := &models.Answer{UserID: user.ID, QuestionID: q.ID, OptionSelected: option}
	require.NoError(t, db.Create(a).Error)
	return a
}
