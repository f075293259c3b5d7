package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"wouldyourather/internal/config"
	"wouldyourather/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevocations struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (m *memoryRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids == nil {
		m.ids = make(map[string]time.Duration)
	}
	m.ids[jti] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[jti]
	return ok, nil
}

type stubUsers map[uint]*models.User

func (s stubUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newTestTokens(store RevocationStore) *SessionTokens {
	return NewSessionTokens(&config.Config{SessionSecret: testSecret, SessionTTLHours: 1}, store)
}

func newGatedApp(tokens *SessionTokens, users UserLoader) *fiber.App {
	app := fiber.New()
	app.Use(SessionLoader(tokens, users))
	app.Use(SessionGate())
	ok := func(c *fiber.Ctx) error {
		if p, found := PrincipalFrom(c); found {
			return c.SendString("hello " + p.Username())
		}
		return c.SendString("anonymous")
	}
	app.Get("/", ok)
	app.Get("/signup/", ok)
	app.Get("/home/", ok)
	app.Get("/leaderboard/", ok)
	app.Get("/static/style.css", ok)
	return app
}

func sessionCookie(t *testing.T, tokens *SessionTokens, user *models.User) *http.Cookie {
	t.Helper()
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: token}
}

func TestSessionGate(t *testing.T) {
	alex := &models.User{ID: 1, Username: "alex", IsActive: true}
	tokens := newTestTokens(&memoryRevocations{})
	app := newGatedApp(tokens, stubUsers{1: alex})

	tests := []struct {
		name             string
		path             string
		authenticated    bool
		expectedStatus   int
		expectedLocation string
		expectedBody     string
	}{
		{name: "anonymous login page", path: "/", expectedStatus: http.StatusOK, expectedBody: "anonymous"},
		{name: "anonymous signup page", path: "/signup/", expectedStatus: http.StatusOK, expectedBody: "anonymous"},
		{name: "signup without trailing slash", path: "/signup", expectedStatus: http.StatusOK, expectedBody: "anonymous"},
		{name: "anonymous static asset", path: "/static/style.css", expectedStatus: http.StatusOK, expectedBody: "anonymous"},
		{name: "anonymous home redirects to login", path: "/home/", expectedStatus: http.StatusFound, expectedLocation: "/?next=/home/"},
		{name: "anonymous keeps query in next", path: "/home/?tab=answered", expectedStatus: http.StatusFound, expectedLocation: "/?next=/home/%3Ftab%3Danswered"},
		{name: "anonymous unknown path redirects", path: "/nowhere/", expectedStatus: http.StatusFound, expectedLocation: "/?next=/nowhere/"},
		{name: "authenticated home", path: "/home/", authenticated: true, expectedStatus: http.StatusOK, expectedBody: "hello alex"},
		{name: "authenticated login bounced", path: "/", authenticated: true, expectedStatus: http.StatusFound, expectedLocation: "/home/"},
		{name: "authenticated signup bounced", path: "/signup", authenticated: true, expectedStatus: http.StatusFound, expectedLocation: "/home/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authenticated {
				req.AddCookie(sessionCookie(t, tokens, alex))
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedLocation != "" {
				assert.Equal(t, tt.expectedLocation, resp.Header.Get("Location"))
			}
			if tt.expectedBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedBody, string(body))
			}
		})
	}
}

func TestSessionGate_SetsNotice(t *testing.T) {
	tokens := newTestTokens(nil)
	app := newGatedApp(tokens, stubUsers{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/leaderboard/", nil))
	require.NoError(t, err)

	var flashCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == flashCookieName {
			flashCookie = c
		}
	}
	require.NotNil(t, flashCookie)

	// Replaying the cookie into a page that consumes flashes yields the notice.
	consumer := fiber.New()
	var got []Flash
	consumer.Get("/", func(c *fiber.Ctx) error {
		got = ConsumeFlashes(c)
		return c.SendStatus(fiber.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie.Name, Value: flashCookie.Value})
	_, err = consumer.Test(req)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, FlashWarning, got[0].Level)
	assert.Equal(t, "Please login to access this page.", got[0].Message)
}

func TestSessionLoader_RejectsBadSessions(t *testing.T) {
	alex := &models.User{ID: 1, Username: "alex", IsActive: true}
	inactive := &models.User{ID: 2, Username: "gone", IsActive: false}
	store := &memoryRevocations{}
	tokens := newTestTokens(store)
	app := newGatedApp(tokens, stubUsers{1: alex, 2: inactive})

	revokedToken, revokedClaims, err := tokens.Issue(alex)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(context.Background(), revokedClaims))

	otherTokens := NewSessionTokens(&config.Config{SessionSecret: strings.Repeat("x", 40), SessionTTLHours: 1}, nil)
	forged, _, err := otherTokens.Issue(alex)
	require.NoError(t, err)

	expired := newTestTokens(nil)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Issue(alex)
	require.NoError(t, err)

	wrongAudience := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		Username: "alex",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    sessionIssuer,
			Audience:  jwt.ClaimStrings{"somebody-else"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ID:        "abc",
		},
	})
	wrongAudienceToken, err := wrongAudience.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"revoked":        revokedToken,
		"forged":         forged,
		"expired":        expiredToken,
		"wrong audience": wrongAudienceToken,
		"inactive user":  sessionCookie(t, tokens, inactive).Value,
		"unknown user":   sessionCookie(t, tokens, &models.User{ID: 99, Username: "ghost"}).Value,
		"garbage":        "not-a-token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/home/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/?next=/home/", resp.Header.Get("Location"))

			cleared := false
			for _, c := range resp.Cookies() {
				if c.Name == SessionCookieName && c.Value == "" {
					cleared = true
				}
			}
			assert.True(t, cleared, "session cookie should be cleared")
		})
	}
}

func TestSessionTokens_RevokeTTL(t *testing.T) {
	store := &memoryRevocations{}
	tokens := newTestTokens(store)
	_, claims, err := tokens.Issue(&models.User{ID: 7, Username: "bob"})
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(context.Background(), claims))
	ttl := store.ids[claims.ID]
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl %s", ttl)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	assert.NotEmpty(t, claims.ID)
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/home/"},
		{"/leaderboard/", "/leaderboard/"},
		{"/question/3/?x=1", "/question/3/?x=1"},
		{"//evil.example.com/", "/home/"},
		{"/\\evil.example.com", "/home/"},
		{"https://evil.example.com/", "/home/"},
		{"leaderboard/", "/home/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeNext(tt.next, "/home/"), tt.next)
	}
}

func TestFlash_SameRequestAndCarryOver(t *testing.T) {
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		SetFlash(c, FlashSuccess, "first")
		SetFlash(c, FlashError, "second")
		return c.Redirect("/show", fiber.StatusFound)
	})
	var shown []Flash
	app.Get("/show", func(c *fiber.Ctx) error {
		SetFlash(c, FlashInfo, "inline")
		shown = ConsumeFlashes(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	for _, c := range resp.Cookies() {
		if c.Name == flashCookieName {
			req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	_, err = app.Test(req)
	require.NoError(t, err)

	require.Len(t, shown, 3)
	assert.Equal(t, "first", shown[0].Message)
	assert.Equal(t, "second", shown[1].Message)
	assert.Equal(t, FlashInfo, shown[2].Level)
}
