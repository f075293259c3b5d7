package seed

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"wouldyourather/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoOptions configures random demo data.
type DemoOptions struct {
	NumUsers     int
	NumQuestions int
	// AnswerRate is the chance, 0..1, that a user answers a given question.
	AnswerRate float64
	MaxDays    int
	Seed       int64
}

// Factory builds random users, questions and answers and persists them.
type Factory struct {
	db    *gorm.DB
	opts  DemoOptions
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// NewFactory creates a Factory bound to db. A zero Seed uses the clock.
func NewFactory(db *gorm.DB, opts DemoOptions) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Factory{
		db:    db,
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
}

// CreateUser persists a random active user with the given bcrypt hash.
func (f *Factory) CreateUser(passwordHash string) (*models.User, error) {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s%s%d", first, last, f.faker.Number(10, 9999)))
	if len(username) > 150 {
		username = username[:150]
	}

	user := &models.User{
		Username:   username,
		Email:      username + "@" + f.faker.DomainName(),
		Password:   passwordHash,
		FirstName:  first,
		LastName:   last,
		Avatar:     models.DefaultAvatar,
		Bio:        truncate(f.faker.Sentence(12), 500),
		IsActive:   true,
		DateJoined: f.pastTime(),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateQuestion persists a random question authored by author.
func (f *Factory) CreateQuestion(author *models.User) (*models.Question, error) {
	q := &models.Question{
		AuthorID:      author.ID,
		OptionOneText: truncate(f.dilemma(), 255),
		OptionTwoText: truncate(f.dilemma(), 255),
		CreatedAt:     f.pastTime(),
	}
	if err := f.db.Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (f *Factory) dilemma() string {
	return fmt.Sprintf("%s %s %s", f.faker.Verb(), f.faker.Adjective(), f.faker.Noun())
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rng.Intn(f.opts.MaxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) randomOption() models.Option {
	if f.rng.Intn(2) == 0 {
		return models.OptionOne
	}
	return models.OptionTwo
}

// Demo creates NumUsers users and NumQuestions questions, then lets each user
// answer others' questions with probability AnswerRate. Demo users share the
// fixture password.
func Demo(db *gorm.DB, opts DemoOptions, cost int) error {
	if opts.NumUsers <= 0 {
		return errors.New("demo: NumUsers must be positive")
	}
	if opts.AnswerRate < 0 || opts.AnswerRate > 1 {
		return errors.New("demo: AnswerRate must be within 0..1")
	}

	fx, err := LoadFixtures()
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(fx.Password), cost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	f := NewFactory(db, opts)
	log.Printf("🌱 Seeding demo data: %d users, %d questions", opts.NumUsers, opts.NumQuestions)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(string(hashed))
		if err != nil {
			return fmt.Errorf("create demo user: %w", err)
		}
		users = append(users, u)
	}

	questions := make([]*models.Question, 0, opts.NumQuestions)
	for i := 0; i < opts.NumQuestions; i++ {
		q, err := f.CreateQuestion(users[f.rng.Intn(len(users))])
		if err != nil {
			return fmt.Errorf("create demo question: %w", err)
		}
		questions = append(questions, q)
	}

	var answers []models.Answer
	for _, u := range users {
		for _, q := range questions {
			if q.AuthorID == u.ID || f.rng.Float64() >= opts.AnswerRate {
				continue
			}
			answers = append(answers, models.Answer{
				UserID:         u.ID,
				QuestionID:     q.ID,
				OptionSelected: f.randomOption(),
			})
		}
	}
	if len(answers) > 0 {
		if err := db.CreateInBatches(answers, 200).Error; err != nil {
			return fmt.Errorf("create demo answers: %w", err)
		}
	}

	log.Printf("✓ Demo data ready: %d users, %d questions, %d answers", len(users), len(questions), len(answers))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
