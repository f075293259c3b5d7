// Package middleware provides session, logging and request-scoped middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"wouldyourather/internal/config"
	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "wyr_session"

	sessionIssuer   = "would-you-rather"
	sessionAudience = "would-you-rather-web"
)

var (
	// ErrInvalidSession is returned for tokens that fail verification.
	ErrInvalidSession = errors.New("invalid session token")
	// ErrRevokedSession is returned for tokens whose jti was revoked at logout.
	ErrRevokedSession = errors.New("session has been revoked")
)

// RevocationStore remembers session ids that must no longer be accepted.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionClaims are the JWT claims of a session token.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidSession)
	}
	return uint(id), nil
}

// SessionTokens issues, verifies and revokes session tokens.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	secure bool
	store  RevocationStore
	now    func() time.Time
}

// NewSessionTokens builds a SessionTokens from configuration.
func NewSessionTokens(cfg *config.Config, store RevocationStore) *SessionTokens {
	return &SessionTokens{
		secret: []byte(cfg.SessionSecret),
		ttl:    time.Duration(cfg.SessionTTLHours) * time.Hour,
		secure: cfg.SessionCookieSecure,
		store:  store,
		now:    time.Now,
	}
}

// TTL is the lifetime of newly issued sessions.
func (t *SessionTokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a new session token for user.
func (t *SessionTokens) Issue(user *models.User) (string, *SessionClaims, error) {
	now := t.now()
	claims := &SessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    sessionIssuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature, issuer, audience, expiry and revocation.
func (t *SessionTokens) Parse(ctx context.Context, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidSession)
	}

	if t.store != nil {
		revoked, err := t.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Redis outage: accept the token rather than logging everyone out.
			observability.RedisErrorRate.WithLabelValues("session_check").Inc()
			Logger.WarnContext(ctx, "session revocation check failed", slog.String("error", err.Error()))
		} else if revoked {
			return nil, ErrRevokedSession
		}
	}
	return claims, nil
}

// Revoke blacklists the session id for the remainder of its lifetime.
func (t *SessionTokens) Revoke(ctx context.Context, claims *SessionClaims) error {
	if t.store == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	return t.store.Revoke(ctx, claims.ID, ttl)
}

// SetCookie writes the session cookie.
func (t *SessionTokens) SetCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   t.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie in the browser.
func (t *SessionTokens) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   t.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
