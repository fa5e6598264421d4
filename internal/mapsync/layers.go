package mapsync

import (
	"encoding/json"

	"aoi-bknd/internal/geom"
)

type LayerKind string

const (
	KindFeature LayerKind = "feature"
	KindPreview LayerKind = "preview"
	KindBase    LayerKind = "base"
)

// Style mirrors the stroke/fill options the rendering widget understands.
type Style struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	DashArray   string  `json:"dashArray,omitempty"`
	FillOpacity float64 `json:"fillOpacity"`
}

var (
	selectedStyle   = Style{Color: "#f97316", Weight: 3, FillOpacity: 0.2}
	unselectedStyle = Style{Color: "#3b82f6", Weight: 3, FillOpacity: 0.2}
	previewStyle    = Style{Color: "#c05621", Weight: 2, DashArray: "4 4", FillOpacity: 0.05}
)

// Layer is one renderable unit handed to the map widget. Feature layers keep
// a stable id derived from their feature so clicks map back to an identity.
type Layer struct {
	ID          string          `json:"id"`
	Kind        LayerKind       `json:"kind"`
	FeatureID   string          `json:"featureId,omitempty"`
	Geometry    json.RawMessage `json:"geometry,omitempty"`
	Style       Style           `json:"style"`
	TileURL     string          `json:"tileUrl,omitempty"`
	Attribution string          `json:"attribution,omitempty"`
}

// Canvas is the command surface of the map rendering widget.
type Canvas interface {
	AddLayer(layer Layer)
	RemoveLayer(id string)
	SetView(lat, lon float64, zoom int)
	FitBounds(box geom.BoundingBox, padding int)
}

type baseTileSet struct {
	url         string
	attribution string
}

var baseTileSets = map[string]baseTileSet{
	"streets": {
		url:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		attribution: "© OpenStreetMap contributors",
	},
	"satellite": {
		url:         "https://mt1.google.com/vt/lyrs=s&x={x}&y={y}&z={z}",
		attribution: "© Google",
	},
}
