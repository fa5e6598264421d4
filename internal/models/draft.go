package models

import (
	"encoding/json"
	"time"
)

// DraftAOI is a client-local area of interest that is never synced to the
// remote store. Its geojson keeps whatever shape the user supplied; drafts
// are only rendered, never normalized.
type DraftAOI struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	GeoJSON   json.RawMessage `json:"geojson"`
	CreatedAt time.Time       `json:"createdAt"`
	Visible   bool            `json:"visible"`
}

// DraftListResponse wraps a draft listing.
type DraftListResponse struct {
	Drafts []DraftAOI `json:"drafts"`
	Count  int        `json:"count"`
}
