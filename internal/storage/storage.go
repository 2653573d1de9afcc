// Package storage keeps recipe images on local disk or in an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"foodgram/internal/config"

	"github.com/google/uuid"
)

// ImageStore persists encoded images and returns the public URL they are
// served from.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType, ext string) (string, error)
	Delete(ctx context.Context, url string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Driver {
	case config.StorageS3:
		return NewS3Store(ctx, cfg)
	case config.StorageLocal, "":
		return NewLocalStore(cfg.MediaDir, cfg.MediaURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectKey returns recipes/YYYY/MM/DD/<uuid><ext>.
func objectKey(now time.Time, ext string) string {
	return path.Join(
		"recipes",
		fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day()),
		uuid.NewString()+ext,
	)
}
