package service

import (
	"context"
	"errors"
	"testing"

	"wouldyourather/internal/models"
	"wouldyourather/internal/repository"
	"wouldyourather/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func signupForm(username, email string) *validation.SignupForm {
	return &validation.SignupForm{
		Username:  username,
		Email:     email,
		Password1: "password123",
		Password2: "password123",
	}
}

func TestAuthService_Signup(t *testing.T) {
	t.Parallel()
	s := newServices(t)
	ctx := context.Background()

	user, err := s.auth.Signup(ctx, signupForm("alex", "Alex@Example.com"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alex@example.com", user.Email)
	assert.Equal(t, models.DefaultAvatar, user.Avatar)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))

	t.Run("username taken ignoring case", func(t *testing.T) {
		_, err := s.auth.Signup(ctx, signupForm("ALEX", "other@example.com"))
		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok, "expected field errors, got %v", err)
		assert.Equal(t, []string{MsgUsernameTaken}, fe.Get("username"))
		assert.False(t, fe.Has("email"))
	})

	t.Run("email taken ignoring case", func(t *testing.T) {
		_, err := s.auth.Signup(ctx, signupForm("bob", "ALEX@example.com"))
		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.Equal(t, []string{MsgEmailRegistered}, fe.Get("email"))
	})

	t.Run("password mismatch", func(t *testing.T) {
		form := signupForm("charles", "charles@example.com")
		form.Password2 = "different1"
		_, err := s.auth.Signup(ctx, form)
		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.True(t, fe.Has("password2"))
	})

	count, err := s.users.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestAuthService_Signup_RaceMapsToFieldError(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	calls := 0
	repo.usernameTakenFn = func(context.Context, string) (bool, error) {
		calls++
		// Free on the pre-check, taken once the competing insert landed.
		return calls > 1, nil
	}
	repo.createFn = func(context.Context, *models.User) error { return repository.ErrDuplicateUser }

	svc := NewAuthService(repo, bcrypt.MinCost)
	_, err := svc.Signup(context.Background(), signupForm("alex", "alex@example.com"))
	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok, "expected field errors, got %v", err)
	assert.Equal(t, []string{MsgUsernameTaken}, fe.Get("username"))
}

func TestAuthService_Signup_RepositoryErrorPropagates(t *testing.T) {
	t.Parallel()
	repoErr := errors.New("connection reset")
	repo := noopUserRepo()
	repo.emailTakenFn = func(context.Context, string) (bool, error) { return false, repoErr }

	svc := NewAuthService(repo, bcrypt.MinCost)
	_, err := svc.Signup(context.Background(), signupForm("alex", "alex@example.com"))
	assert.ErrorIs(t, err, repoErr)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()
	s := newServices(t)
	ctx := context.Background()

	_, err := s.auth.Signup(ctx, signupForm("alex", "alex@example.com"))
	require.NoError(t, err)

	user, err := s.auth.Authenticate(ctx, "alex", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alex", user.Username)

	_, err = s.auth.Authenticate(ctx, "alex", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.auth.Authenticate(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", "alex").Update("is_active", false).Error)
	_, err = s.auth.Authenticate(ctx, "alex", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewAuthService_ClampsCost(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(noopUserRepo(), 99)
	hash, err := svc.HashPassword("password123")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
