package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/middleware"
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// tokens maps raw cookie values to user ids
type tokens map[string]uint64

func (tk tokens) Parse(token string) (uint64, error) {
	if id, ok := tk[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func setup(t *testing.T) (*gorm.DB, *models.User) {
	t.Helper()
	db := testutil.NewTestDB(t, testutil.TestConfig(t))
	return db, testutil.CreateUser(t, db, "paul")
}

func whoami(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user != nil {
		return c.SendString(user.Username)
	}
	return c.SendString("anonymous")
}

func request(t *testing.T, app *fiber.App, target, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: cookie})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAuthUser(t *testing.T) {
	db, user := setup(t)
	sessions := tokens{"good": user.ID, "ghost": 9999}

	app := fiber.New()
	app.Get("/api/profil", middleware.AuthUser(db, sessions), whoami)

	resp := request(t, app, "/api/profil?tab=ads", "")
	testutil.AssertRedirect(t, resp, "/api/login?next=%2Fapi%2Fprofil%3Ftab%3Dads")

	resp = request(t, app, "/api/profil", "good")
	testutil.AssertStatus(t, resp, http.StatusOK)
	assert.Equal(t, "paul", body(t, resp))

	// Unknown users lose their cookie
	resp = request(t, app, "/api/profil", "ghost")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	cleared := false
	for _, c := range resp.Cookies() {
		cleared = cleared || (c.Name == middleware.SessionCookie && c.Value == "")
	}
	assert.True(t, cleared)
}

func TestAuthUserRejectsInactive(t *testing.T) {
	db, user := setup(t)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	app := fiber.New()
	app.Get("/api/profil", middleware.AuthUser(db, tokens{"good": user.ID}), whoami)

	resp := request(t, app, "/api/profil", "good")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestOptionalUser(t *testing.T) {
	db, user := setup(t)

	app := fiber.New()
	app.Get("/api/ad/1", middleware.OptionalUser(db, tokens{"good": user.ID}), whoami)

	assert.Equal(t, "anonymous", body(t, request(t, app, "/api/ad/1", "")))
	assert.Equal(t, "anonymous", body(t, request(t, app, "/api/ad/1", "forged")))
	assert.Equal(t, "paul", body(t, request(t, app, "/api/ad/1", "good")))
}

func TestRedirectAuthenticated(t *testing.T) {
	db, user := setup(t)

	app := fiber.New()
	app.Post("/api/register", middleware.RedirectAuthenticated(db, tokens{"good": user.ID}, "/api/profil"), whoami)

	req := httptest.NewRequest("POST", "/api/register", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	testutil.AssertRedirect(t, resp, "/api/profil")

	resp, err = app.Test(httptest.NewRequest("POST", "/api/register", nil), -1)
	require.NoError(t, err)
	testutil.AssertStatus(t, resp, http.StatusOK)
}

func TestVersionMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		version string
		status  int
	}{
		{"default", "", http.StatusOK},
		{"alias", "1", http.StatusOK},
		{"minor", "1.2.0", http.StatusOK},
		{"unsupported", "2.0.0", http.StatusBadRequest},
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		},
	})
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.version != "" {
				req.Header.Set("X-Api-Version", tt.version)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestRequestLoggerStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	app := fiber.New()
	app.Use(middleware.RequestLogger(zap.New(core)))
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/gone", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	tests := []struct {
		name    string
		target  string
		version string
		status  int64
		level   zapcore.Level
	}{
		{"ok", "/", "", http.StatusOK, zapcore.InfoLevel},
		{"version rejected", "/", "2.0.0", http.StatusBadRequest, zapcore.WarnLevel},
		{"fiber error", "/gone", "", http.StatusNotFound, zapcore.WarnLevel},
		{"unexpected", "/boom", "", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.version != "" {
				req.Header.Set("X-Api-Version", tt.version)
			}
			_, err := app.Test(req, -1)
			require.NoError(t, err)

			entries := logs.TakeAll()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, tt.status, entries[0].ContextMap()["status"])
		})
	}
}
