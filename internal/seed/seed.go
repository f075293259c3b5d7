// Package seed creates the initial accounts, sample questions and random demo
// data for development databases.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"log"

	"wouldyourather/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// UserFixture is one of the initial accounts.
type UserFixture struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// QuestionFixture is one sample question.
type QuestionFixture struct {
	OptionOne string `yaml:"option_one"`
	OptionTwo string `yaml:"option_two"`
}

// Fixtures is the decoded fixtures file.
type Fixtures struct {
	Password  string            `yaml:"password"`
	Users     []UserFixture     `yaml:"users"`
	Questions []QuestionFixture `yaml:"questions"`
}

// LoadFixtures decodes the embedded fixtures.
func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if f.Password == "" {
		return nil, errors.New("fixtures: password is empty")
	}
	return &f, nil
}

// Result reports what a seeding run did.
type Result struct {
	Created int
	Skipped int
}

// Users creates the initial accounts, leaving existing usernames untouched.
func Users(db *gorm.DB, cost int) (Result, error) {
	fx, err := LoadFixtures()
	if err != nil {
		return Result{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(fx.Password), cost)
	if err != nil {
		return Result{}, fmt.Errorf("hash fixture password: %w", err)
	}

	var res Result
	for _, u := range fx.Users {
		user := models.User{
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Password:  string(hashed),
			Avatar:    models.DefaultAvatar,
			IsActive:  true,
		}
		tx := db.Where(models.User{Username: u.Username}).FirstOrCreate(&user)
		if tx.Error != nil {
			return res, fmt.Errorf("create user %s: %w", u.Username, tx.Error)
		}
		if tx.RowsAffected == 0 {
			log.Printf("User already exists: %s", u.Username)
			res.Skipped++
			continue
		}
		log.Printf("✓ Created user: %s", u.Username)
		res.Created++
	}
	return res, nil
}

// Questions creates the sample questions, rotating authorship over the
// existing users and skipping questions whose texts already exist. When the
// database has no users the initial accounts are created first.
func Questions(db *gorm.DB, cost int) (Result, error) {
	fx, err := LoadFixtures()
	if err != nil {
		return Result{}, err
	}

	authors, err := listUsers(db)
	if err != nil {
		return Result{}, err
	}
	if len(authors) == 0 {
		log.Println("⚠️  No users found. Creating default users first...")
		if _, err := Users(db, cost); err != nil {
			return Result{}, err
		}
		if authors, err = listUsers(db); err != nil {
			return Result{}, err
		}
	}

	var res Result
	for i, q := range fx.Questions {
		var count int64
		if err := db.Model(&models.Question{}).
			Where("option_one_text = ? AND option_two_text = ?", q.OptionOne, q.OptionTwo).
			Count(&count).Error; err != nil {
			return res, fmt.Errorf("check question: %w", err)
		}
		if count > 0 {
			log.Printf("Question already exists: %s or %s", q.OptionOne, q.OptionTwo)
			res.Skipped++
			continue
		}

		question := models.Question{
			AuthorID:      authors[i%len(authors)].ID,
			OptionOneText: q.OptionOne,
			OptionTwoText: q.OptionTwo,
		}
		if err := db.Create(&question).Error; err != nil {
			return res, fmt.Errorf("create question: %w", err)
		}
		log.Printf("✓ Created question: %s or %s", q.OptionOne, q.OptionTwo)
		res.Created++
	}
	return res, nil
}

// listUsers returns users newest first, the default user ordering.
func listUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Order("date_joined DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
