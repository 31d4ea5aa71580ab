package server_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/lp-dev-web/lebonrecoin/data"
	"github.com/lp-dev-web/lebonrecoin/internal/database"
	"github.com/lp-dev-web/lebonrecoin/internal/middleware"
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/server"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TestWithContainers runs an ad from registration to publication against a real
// database and a MinIO bucket
func TestWithContainers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE is not set")
	}

	tc, err := testutil.CreateAllTestContainers(t, true)
	require.NoError(t, err)
	defer tc.Terminate(t)
	cfg := tc.Config

	db, err := database.Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedReferenceData(db, data.ReferenceData))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store, err := storage.New(ctx, cfg)
	require.NoError(t, err)
	s3, ok := store.(*storage.S3Storage)
	require.True(t, ok, "expected the s3 driver, got %T", store)
	require.NoError(t, s3.EnsureBucket(ctx))

	sessions := &services.SessionManager{Secret: []byte(cfg.SessionSecret), TTL: cfg.SessionTTL}
	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Storage:  store,
		Hasher:   services.BcryptHasher{Cost: bcrypt.MinCost},
		Sessions: sessions,
	})

	user := testutil.CreateUser(t, db, "paul")
	testutil.CreateAddress(t, db, user.ID)
	token, _, err := sessions.Issue(user)
	require.NoError(t, err)

	do := func(req *http.Request) *http.Response {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	t.Run("Health", func(t *testing.T) {
		resp := do(httptest.NewRequest("GET", "/api/health", nil))
		testutil.AssertStatus(t, resp, http.StatusOK)
	})

	t.Run("PublishAd", func(t *testing.T) {
		resp := do(testutil.JSONRequest(t, "POST", "/api/ad/new", map[string]any{
			"category":    testutil.CategoryMaison,
			"title":       "Canapé d'angle",
			"price":       250,
			"description": "Tissu gris, très peu servi.",
			"condition":   testutil.ConditionNeuf,
		}))
		testutil.AssertStatus(t, resp, http.StatusCreated)
		var created struct {
			Data models.Product `json:"data"`
		}
		testutil.ParseJSON(t, resp, &created)

		resp = do(testutil.MultipartRequest(t, "POST", fmt.Sprintf("/api/ad/new/%d", created.Data.ID), map[string][]byte{
			"picture_1": testutil.PNG(t),
		}))
		testutil.AssertStatus(t, resp, http.StatusCreated)

		resp = do(httptest.NewRequest("GET", "/api/search/canap", nil))
		testutil.AssertStatus(t, resp, http.StatusOK)
		var found struct {
			Products []models.Product `json:"products"`
		}
		testutil.ParseJSON(t, resp, &found)
		require.Len(t, found.Products, 1)
		require.NotNil(t, found.Products[0].Picture)
		assert.Contains(t, found.Products[0].Picture.URLs[0], cfg.S3Bucket)
	})
}
