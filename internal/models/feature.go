package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// DefaultFeatureName is used when a save request carries no name.
const DefaultFeatureName = "Untitled area"

// AOIFeature is a saved, persistence-tracked area of interest. Geometry is
// always a bare geometry value; normalization happens before construction.
type AOIFeature struct {
	bun.BaseModel `bun:"table:aoi_features,alias:aoi"`

	ID         string          `bun:"id,pk" json:"id"`
	Name       string          `bun:"name,notnull" json:"name"`
	Geometry   json.RawMessage `bun:"geometry,type:jsonb,notnull" json:"geometry"`
	Properties map[string]any  `bun:"properties,type:jsonb" json:"properties"`
	CreatedAt  time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// FeatureDraft is the payload accepted by a save: a normalized geometry plus
// optional display metadata, before any ids or timestamps exist.
type FeatureDraft struct {
	Name       string          `json:"name"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// FeatureUpdate is a partial patch applied to a saved feature.
type FeatureUpdate struct {
	Name       *string         `json:"name,omitempty"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
}

// Source reports which store produced a feature-store result.
type Source string

const (
	SourceRemote        Source = "remote"
	SourceLocalFallback Source = "local_fallback"
)

// FeatureResponse wraps a single feature with its provenance tag.
type FeatureResponse struct {
	Feature *AOIFeature `json:"feature"`
	Source  Source      `json:"source"`
}

// FeatureListResponse wraps a feature listing with its provenance tag.
type FeatureListResponse struct {
	Features []AOIFeature `json:"features"`
	Count    int          `json:"count"`
	Source   Source       `json:"source"`
}

// DeleteResponse reports a delete outcome: Deleted is true only when the
// remote store confirmed the removal.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	Source  Source `json:"source"`
}
