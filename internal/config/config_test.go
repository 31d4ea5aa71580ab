package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DATABASE", "lebonrecoin.db")
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, 5*1024*1024, cfg.UploadMaxBytes)
	assert.Equal(t, 336*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.SeedReferenceData)
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DB_DATABASE", "")
	t.Setenv("SESSION_SECRET", "secret")

	_, err := Load()
	assert.EqualError(t, err, "DB_DATABASE is required")
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("DB_DATABASE", "lebonrecoin.db")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "SESSION_SECRET is required")
}

func TestLoadS3RequiresBucket(t *testing.T) {
	t.Setenv("DB_DATABASE", "lebonrecoin.db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsIntFallback(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))

	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, getEnvAsInt("SOME_INT", 7))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("SOME_BOOL", "true")
	assert.True(t, getEnvAsBool("SOME_BOOL", false))

	t.Setenv("SOME_BOOL", "garbage")
	assert.False(t, getEnvAsBool("SOME_BOOL", false))
}
