package storage

import (
	"context"
	"fmt"

	"github.com/smallbiznis/invoicer/internal/config"
)

// FromConfig builds the store selected by STORAGE_DRIVER.
func FromConfig(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal:
		return NewLocal(cfg.LocalDir, cfg.LocalURLPrefix), nil

	case config.StorageDriverS3, "":
		return NewS3(ctx, S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
		})

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER: %s", cfg.Driver)
	}
}
