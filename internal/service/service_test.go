package service

import (
	"context"
	"testing"

	"wouldyourather/internal/models"
	"wouldyourather/internal/repository"
	"wouldyourather/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type services struct {
	db          *gorm.DB
	auth        *AuthService
	questions   *QuestionService
	leaderboard *LeaderboardService
	users       *UserService
}

func newServices(t *testing.T) services {
	t.Helper()
	db := testutil.NewTestDB(t)
	userRepo := repository.NewUserRepository(db)
	return services{
		db:          db,
		auth:        NewAuthService(userRepo, bcrypt.MinCost),
		questions:   NewQuestionService(repository.NewQuestionRepository(db), repository.NewAnswerRepository(db)),
		leaderboard: NewLeaderboardService(userRepo),
		users:       NewUserService(userRepo),
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation), "expected validation error, got %v", err)
}

// userRepoStub lets tests script individual repository calls.
type userRepoStub struct {
	repository.UserRepository

	getByUsernameFn func(context.Context, string) (*models.User, error)
	usernameTakenFn func(context.Context, string) (bool, error)
	emailTakenFn    func(context.Context, string) (bool, error)
	createFn        func(context.Context, *models.User) error
	setStaffFn      func(context.Context, string, bool) error
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.usernameTakenFn(ctx, username)
}
func (s *userRepoStub) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.emailTakenFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) SetStaff(ctx context.Context, username string, staff bool) error {
	return s.setStaffFn(ctx, username, staff)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		usernameTakenFn: func(context.Context, string) (bool, error) { return false, nil },
		emailTakenFn:    func(context.Context, string) (bool, error) { return false, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		setStaffFn:      func(context.Context, string, bool) error { return nil },
	}
}
