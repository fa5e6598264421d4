package mapsync

import (
	"encoding/json"
	"fmt"
	"sync"

	"aoi-bknd/internal/geom"
	"aoi-bknd/internal/models"
)

const (
	previewLayerID = "preview"
	fitPadding     = 20
	defaultZoom    = 12
)

// Engine reconciles the saved feature set, the current selection and an
// optional preview outline against the layers shown on a Canvas. Redraws are
// clear-and-redraw and idempotent; at most one preview and one base tile
// layer exist at any time.
type Engine struct {
	canvas   Canvas
	onSelect func(featureID string)

	mu              sync.Mutex
	features        []models.AOIFeature
	selectedID      string
	featureLayerIDs []string
	previewActive   bool
	baseLayerIDs    []string
}

// NewEngine wires a canvas and a selection callback; clicking a feature layer
// reports that feature's id through the callback.
func NewEngine(canvas Canvas, onSelect func(featureID string)) *Engine {
	if onSelect == nil {
		onSelect = func(string) {}
	}
	return &Engine{canvas: canvas, onSelect: onSelect}
}

// SetFeatures replaces the feature set and redraws. A feature-set change
// invalidates any active preview outline: the outline stands for "not yet
// confirmed" and a completed save supersedes it.
func (e *Engine) SetFeatures(features []models.AOIFeature) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.features = features
	e.clearPreview()
	e.redraw()
}

// Select marks a feature id as selected and redraws with distinguished
// styling. An empty id clears the selection.
func (e *Engine) Select(featureID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.selectedID = featureID
	e.redraw()
}

// Selected returns the currently selected feature id, empty when none.
func (e *Engine) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

// SetPreview shows a dashed outline for a not-yet-saved geometry, replacing
// any prior outline. When the geometry yields a bounding box the viewport is
// fitted to it with fixed padding and no animation. nil clears the outline.
func (e *Engine) SetPreview(geojson json.RawMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearPreview()
	if len(geojson) == 0 {
		return
	}

	e.canvas.AddLayer(Layer{
		ID:       previewLayerID,
		Kind:     KindPreview,
		Geometry: geojson,
		Style:    previewStyle,
	})
	e.previewActive = true

	if box := geom.ComputeBoundingBox(geojson); box != nil {
		e.canvas.FitBounds(*box, fitPadding)
	}
}

// Focus consumes a one-shot viewport focus request: recenter, then fit the
// bounding box when one is carried (the box wins for framing).
func (e *Engine) Focus(req models.ViewportFocus) {
	e.mu.Lock()
	defer e.mu.Unlock()

	zoom := req.Zoom
	if zoom == 0 {
		zoom = defaultZoom
	}
	e.canvas.SetView(req.Lat, req.Lon, zoom)

	if req.BoundingBox != nil {
		e.canvas.FitBounds(*req.BoundingBox, fitPadding)
	}
}

// SetBaseLayer swaps the base tile layer. All existing base layers are
// removed first so tiles never stack.
func (e *Engine) SetBaseLayer(name string) error {
	tiles, ok := baseTileSets[name]
	if !ok {
		return fmt.Errorf("unknown base layer %q", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.baseLayerIDs {
		e.canvas.RemoveLayer(id)
	}
	e.baseLayerIDs = e.baseLayerIDs[:0]

	id := "base-" + name
	e.canvas.AddLayer(Layer{
		ID:          id,
		Kind:        KindBase,
		TileURL:     tiles.url,
		Attribution: tiles.attribution,
	})
	e.baseLayerIDs = append(e.baseLayerIDs, id)
	return nil
}

// Click resolves a rendered layer id back to a feature identity and invokes
// the selection callback. Clicks on non-feature layers are ignored.
func (e *Engine) Click(layerID string) {
	e.mu.Lock()
	var featureID string
	for _, f := range e.features {
		if featureLayerID(f.ID) == layerID {
			featureID = f.ID
			break
		}
	}
	e.mu.Unlock()

	if featureID != "" {
		e.onSelect(featureID)
	}
}

// redraw removes every prior feature layer and adds exactly one layer per
// feature. Callers hold e.mu.
func (e *Engine) redraw() {
	for _, id := range e.featureLayerIDs {
		e.canvas.RemoveLayer(id)
	}
	e.featureLayerIDs = e.featureLayerIDs[:0]

	for _, f := range e.features {
		style := unselectedStyle
		if f.ID == e.selectedID {
			style = selectedStyle
		}
		id := featureLayerID(f.ID)
		e.canvas.AddLayer(Layer{
			ID:        id,
			Kind:      KindFeature,
			FeatureID: f.ID,
			Geometry:  f.Geometry,
			Style:     style,
		})
		e.featureLayerIDs = append(e.featureLayerIDs, id)
	}
}

// clearPreview removes the outline layer if present. Callers hold e.mu.
func (e *Engine) clearPreview() {
	if e.previewActive {
		e.canvas.RemoveLayer(previewLayerID)
		e.previewActive = false
	}
}

func featureLayerID(featureID string) string {
	return "feature-" + featureID
}
