package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mughouse/mughouse-server/internal/blob"
	"github.com/mughouse/mughouse-server/internal/config"
	"github.com/mughouse/mughouse-server/internal/logger"
)

// ProvideBlobStore provides the product image blob store.
// The backend is selected by configuration: local filesystem by default,
// S3 or MinIO for deployments with external object storage.
func ProvideBlobStore(i do.Injector) (blob.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := blob.Open(context.Background(), cfg.Blob)
	if err != nil {
		return nil, err
	}

	log.Info("Blob storage initialized", "driver", st.Driver())

	return st, nil
}
