// Package service holds the business logic between the HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"
	"wouldyourather/internal/repository"
	"wouldyourather/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and inactive accounts alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Signup field messages.
const (
	MsgUsernameTaken   = "This username is already taken."
	MsgEmailRegistered = "This email is already registered."
)

// AuthService registers accounts and checks credentials.
type AuthService struct {
	users      repository.UserRepository
	bcryptCost int
	dummyHash  []byte
}

// NewAuthService builds an AuthService hashing with cost, or bcrypt.DefaultCost when cost is out of range.
func NewAuthService(users repository.UserRepository, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Used to spend the same time on unknown usernames as on wrong passwords.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &AuthService{users: users, bcryptCost: cost, dummyHash: dummy}
}

// HashPassword hashes a plain password with the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// Signup validates the form, checks case-insensitive uniqueness and creates the account.
// Form problems come back as validation.FieldErrors.
func (s *AuthService) Signup(ctx context.Context, form *validation.SignupForm) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "AuthService.Signup")
	defer span.End()

	errs := form.Validate()
	if !errs.Has("username") {
		taken, err := s.users.UsernameTaken(ctx, form.Username)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if taken {
			errs.Add("username", MsgUsernameTaken)
		}
	}
	if !errs.Has("email") {
		taken, err := s.users.EmailTaken(ctx, form.Email)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if taken {
			errs.Add("email", MsgEmailRegistered)
		}
	}
	if errs.Any() {
		observability.RecordAuthEvent("signup", observability.OutcomeRejected)
		return nil, errs
	}

	hashed, err := s.HashPassword(form.Password1)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	user := &models.User{
		Username: form.Username,
		Email:    strings.ToLower(form.Email),
		Password: hashed,
		Avatar:   models.DefaultAvatar,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			observability.RecordAuthEvent("signup", observability.OutcomeDuplicate)
			return nil, s.duplicateFieldErrors(ctx, form)
		}
		span.SetError(err)
		return nil, err
	}

	span.AddAttributes(attribute.Int("user.id", int(user.ID)))
	observability.RecordAuthEvent("signup", observability.OutcomeSuccess)
	return user, nil
}

// duplicateFieldErrors works out which field lost a concurrent signup race.
func (s *AuthService) duplicateFieldErrors(ctx context.Context, form *validation.SignupForm) validation.FieldErrors {
	errs := validation.FieldErrors{}
	if taken, err := s.users.UsernameTaken(ctx, form.Username); err == nil && taken {
		errs.Add("username", MsgUsernameTaken)
	}
	if taken, err := s.users.EmailTaken(ctx, form.Email); err == nil && taken {
		errs.Add("email", MsgEmailRegistered)
	}
	if !errs.Any() {
		errs.Add("username", MsgUsernameTaken)
	}
	return errs
}

// Authenticate checks the credentials. Unknown users, wrong passwords and
// inactive accounts all yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "AuthService.Authenticate")
	defer span.End()

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		observability.RecordAuthEvent("login", observability.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		observability.RecordAuthEvent("login", observability.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		observability.RecordAuthEvent("login", observability.OutcomeRejected)
		return nil, ErrInvalidCredentials
	}

	observability.RecordAuthEvent("login", observability.OutcomeSuccess)
	return user, nil
}
