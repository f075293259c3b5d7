package middleware

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// Principal is the authenticated user attached to a request.
type Principal struct {
	User   *models.User
	Claims *SessionClaims
}

// ID returns the user id of the principal.
func (p *Principal) ID() uint {
	return p.User.ID
}

// Username returns the username of the principal.
func (p *Principal) Username() string {
	return p.User.Username
}

// PrincipalFrom returns the principal loaded for this request, if any.
func PrincipalFrom(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok && p != nil
}

// SetPrincipal attaches p to the request.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
	c.Locals("userID", p.User.ID)
}

// UserLoader resolves the subject of a session token.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// SessionLoader reads the session cookie and attaches a Principal when it is valid.
// Invalid, revoked or orphaned sessions clear the cookie and continue anonymously.
func SessionLoader(tokens *SessionTokens, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookieName)
		if raw == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		claims, err := tokens.Parse(ctx, raw)
		if err != nil {
			Logger.DebugContext(ctx, "discarding session cookie", slog.String("reason", err.Error()))
			tokens.ClearCookie(c)
			return c.Next()
		}

		userID, err := claims.UserID()
		if err != nil {
			tokens.ClearCookie(c)
			return c.Next()
		}

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				tokens.ClearCookie(c)
				return c.Next()
			}
			return err
		}
		if !user.IsActive {
			tokens.ClearCookie(c)
			return c.Next()
		}

		SetPrincipal(c, &Principal{User: user, Claims: claims})
		return c.Next()
	}
}

// Gate paths.
const (
	LoginPath  = "/"
	SignupPath = "/signup/"
	HomePath   = "/home/"
)

var publicPrefixes = []string{"/static", "/media"}

// SessionGate requires a principal everywhere except the login page, the signup
// page and asset prefixes. Authenticated users are sent away from login and signup.
func SessionGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := normalizePath(c.Path())
		_, authenticated := PrincipalFrom(c)

		if authenticated {
			if isAuthEntryPath(path) {
				observability.SessionGateRedirects.WithLabelValues("authenticated").Inc()
				SetFlash(c, FlashInfo, "You are already logged in.")
				return c.Redirect(HomePath, fiber.StatusFound)
			}
			return c.Next()
		}

		if isPublicPath(path) {
			return c.Next()
		}

		observability.SessionGateRedirects.WithLabelValues("anonymous").Inc()
		SetFlash(c, FlashWarning, "Please login to access this page.")
		return c.Redirect(LoginRedirectURL(c.OriginalURL()), fiber.StatusFound)
	}
}

// LoginRedirectURL builds the login URL that returns to next after authentication.
func LoginRedirectURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}

func isAuthEntryPath(p string) bool {
	return p == normalizePath(LoginPath) || p == normalizePath(SignupPath)
}

func isPublicPath(p string) bool {
	if isAuthEntryPath(p) {
		return true
	}
	for _, prefix := range publicPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// SafeNext returns next when it is a local path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
