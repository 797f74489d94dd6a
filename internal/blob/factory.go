package blob

import (
	"context"
	"fmt"

	"github.com/mughouse/mughouse-server/internal/config"
)

// Open selects a Store implementation from the blob configuration section.
func Open(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem:
		return NewFilesystem(cfg.Root)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			PathStyle:       cfg.UsePathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
