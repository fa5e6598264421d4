package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aoi-bknd/internal/models"

	"github.com/uptrace/bun"
)

// Postgres implements Remote on top of the aoi_features table.
type Postgres struct {
	db *bun.DB
}

func NewPostgres(db *bun.DB) *Postgres {
	return &Postgres{db: db}
}

// Insert stores a new feature; id and timestamps are assigned by the
// database and scanned back into the model.
func (p *Postgres) Insert(ctx context.Context, feature *models.AOIFeature) (*models.AOIFeature, error) {
	_, err := p.db.NewInsert().
		Model(feature).
		ExcludeColumn("id", "created_at", "updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return feature, nil
}

// SelectAll returns every saved feature, newest first.
func (p *Postgres) SelectAll(ctx context.Context) ([]models.AOIFeature, error) {
	var features []models.AOIFeature
	err := p.db.NewSelect().
		Model(&features).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return features, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.NewDelete().
		Model((*models.AOIFeature)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, id string, patch models.FeatureUpdate) (*models.AOIFeature, error) {
	feature := new(models.AOIFeature)

	q := p.db.NewUpdate().
		Model(feature).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Returning("*")

	if patch.Name != nil {
		q = q.Set("name = ?", *patch.Name)
	}
	if len(patch.Geometry) > 0 {
		q = q.Set("geometry = ?", string(patch.Geometry))
	}
	if patch.Properties != nil {
		props, err := json.Marshal(patch.Properties)
		if err != nil {
			return nil, fmt.Errorf("encoding properties: %w", err)
		}
		q = q.Set("properties = ?", string(props))
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return feature, nil
}
