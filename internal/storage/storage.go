package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lp-dev-web/lebonrecoin/internal/config"
)

// Storage persists uploaded pictures under opaque keys
type Storage interface {
	Save(ctx context.Context, key string, content []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Ping(ctx context.Context) error
}

// New builds the storage selected by STORAGE_DRIVER
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "local":
		return NewLocalStorage(cfg.UploadRoot, cfg.UploadURLPrefix)
	case "s3":
		return NewS3Storage(ctx, S3Options{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
}

// NewKey builds the key of a picture of productID: {product}/{microsecond}-{random}_{filename}
func NewKey(productID uint64, filename string, now time.Time) string {
	return fmt.Sprintf("%d/%06d-%s_%s", productID, now.Nanosecond()/1000, uuid.NewString()[:8], sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := strings.Trim(b.String(), ".")
	if clean == "" {
		clean = "picture"
	}
	if len(clean) > 100 {
		clean = clean[len(clean)-100:]
	}
	return clean
}
