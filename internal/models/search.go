package models

import (
	"encoding/json"

	"aoi-bknd/internal/geom"
)

// SearchSelection is the transient result of clicking a geocoder hit. The raw
// geocoder geojson is kept unnormalized until an explicit confirm.
type SearchSelection struct {
	DisplayName string            `json:"displayName"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	BoundingBox *geom.BoundingBox `json:"boundingBox,omitempty"`
	GeoJSON     json.RawMessage   `json:"geojson,omitempty"`
}

// ViewportFocus is a one-shot directive to recenter the map. A bounding box,
// when present, takes precedence for framing; the center values agree either
// way.
type ViewportFocus struct {
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	Zoom        int               `json:"zoom,omitempty"`
	BoundingBox *geom.BoundingBox `json:"boundingBox,omitempty"`
}

// PendingCandidate is a staged, not-yet-persisted geometry produced by an
// upload or a drawn shape. Saving it is a separate explicit action.
type PendingCandidate struct {
	Geometry json.RawMessage `json:"geometry"`
	Outline  json.RawMessage `json:"outline,omitempty"`
	Focus    *ViewportFocus  `json:"focus,omitempty"`
}
