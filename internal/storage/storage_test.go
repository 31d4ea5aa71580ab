package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

	key := NewKey(42, "Mon Vélo (2).JPG", now)
	assert.Regexp(t, regexp.MustCompile(`^42/123456-[0-9a-f]{8}_Mon_V_lo__2_\.JPG$`), key)

	other := NewKey(42, "Mon Vélo (2).JPG", now)
	assert.NotEqual(t, key, other)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "photo.png", sanitizeFilename(`C:\Users\me\photo.png`))
	assert.Equal(t, "picture", sanitizeFilename(".."))
}

func TestLocalStorage(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Save(ctx, "7/1-abc_photo.png", []byte("data"), "image/png"))

	content, err := os.ReadFile(filepath.Join(root, "7", "1-abc_photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
	assert.Equal(t, "/uploads/7/1-abc_photo.png", s.URL("7/1-abc_photo.png"))
	assert.Equal(t, "", s.URL(""))

	require.NoError(t, s.Delete(ctx, "7/1-abc_photo.png"))
	require.NoError(t, s.Delete(ctx, "7/1-abc_photo.png"))
	_, err = os.Stat(filepath.Join(root, "7", "1-abc_photo.png"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, s.Save(ctx, "../escape.png", []byte("x"), "image/png"))
}
