package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/config"
	"github.com/lp-dev-web/lebonrecoin/internal/middleware"
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/server"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var today = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type testApp struct {
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	sessions *services.SessionManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := testutil.TestConfig(t)
	db := testutil.NewTestDB(t, cfg)
	store, err := storage.NewLocalStorage(cfg.UploadRoot, cfg.UploadURLPrefix)
	require.NoError(t, err)

	sessions := &services.SessionManager{Secret: []byte(cfg.SessionSecret), TTL: cfg.SessionTTL}
	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Storage:  store,
		Hasher:   services.BcryptHasher{Cost: bcrypt.MinCost},
		Sessions: sessions,
		Now:      func() time.Time { return today },
	})
	return &testApp{app: app, db: db, cfg: cfg, sessions: sessions}
}

// do runs req, optionally as user
func (a *testApp) do(t *testing.T, req *http.Request, user *models.User) *http.Response {
	t.Helper()
	if user != nil {
		token, _, err := a.sessions.Issue(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// message decodes a MessageResponse body
type message struct {
	Message  string         `json:"message"`
	Ok       bool           `json:"ok"`
	Location string         `json:"location"`
	Data     map[string]any `json:"data"`
}

type failure struct {
	Status int    `json:"status"`
	Type   string `json:"type"`
	Errors map[string]struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func dataID(t *testing.T, m message) uint64 {
	t.Helper()
	id, ok := m.Data["id"].(float64)
	require.True(t, ok, "response data has no id: %v", m.Data)
	return uint64(id)
}
