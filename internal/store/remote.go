package store

import (
	"context"
	"errors"

	"aoi-bknd/internal/models"
)

// ErrNotFound reports that an id matched nothing in the remote store.
var ErrNotFound = errors.New("feature not found")

// Remote is the durable authoritative store for saved AOI features. Every
// error it returns is treated by the feature service as "remote unavailable"
// and degrades to the local-fallback path.
type Remote interface {
	Insert(ctx context.Context, feature *models.AOIFeature) (*models.AOIFeature, error)
	SelectAll(ctx context.Context) ([]models.AOIFeature, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, patch models.FeatureUpdate) (*models.AOIFeature, error)
}
