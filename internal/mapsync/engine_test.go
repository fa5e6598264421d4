package mapsync

import (
	"encoding/json"
	"testing"

	"aoi-bknd/internal/geom"
	"aoi-bknd/internal/models"
)

var squareGeom = json.RawMessage(`{"type":"Polygon","coordinates":[[[6.5,51.2],[6.6,51.2],[6.6,51.3],[6.5,51.3],[6.5,51.2]]]}`)

func twoFeatures() []models.AOIFeature {
	return []models.AOIFeature{
		{ID: "a", Name: "first", Geometry: squareGeom},
		{ID: "b", Name: "second", Geometry: squareGeom},
	}
}

func layersOfKind(c *MemoryCanvas, kind LayerKind) []Layer {
	var out []Layer
	for _, l := range c.Layers() {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

func TestRedrawOneLayerPerFeature(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.SetFeatures(twoFeatures())

	layers := layersOfKind(canvas, KindFeature)
	if len(layers) != 2 {
		t.Fatalf("expected 2 feature layers, got %d", len(layers))
	}
	if layers[0].FeatureID != "a" || layers[1].FeatureID != "b" {
		t.Errorf("unexpected layer identities %+v", layers)
	}
}

func TestRedrawIdempotent(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.SetFeatures(twoFeatures())
	first := canvas.Layers()

	engine.SetFeatures(twoFeatures())
	second := canvas.Layers()

	if len(first) != len(second) {
		t.Fatalf("redraw leaked layers: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("layer %d changed identity: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestSelectionStyling(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.SetFeatures(twoFeatures())
	engine.Select("b")

	for _, l := range layersOfKind(canvas, KindFeature) {
		want := unselectedStyle
		if l.FeatureID == "b" {
			want = selectedStyle
		}
		if l.Style != want {
			t.Errorf("feature %s: expected style %+v, got %+v", l.FeatureID, want, l.Style)
		}
	}
	if selectedStyle.Color == unselectedStyle.Color {
		t.Error("selected stroke must be visually distinct")
	}
}

func TestClickInvokesSelectionCallback(t *testing.T) {
	canvas := NewMemoryCanvas()
	var clicked string
	engine := NewEngine(canvas, func(id string) { clicked = id })

	engine.SetFeatures(twoFeatures())
	engine.Click("feature-b")
	if clicked != "b" {
		t.Errorf("expected callback with feature id b, got %q", clicked)
	}

	clicked = ""
	engine.Click("preview")
	if clicked != "" {
		t.Errorf("non-feature click must not select, got %q", clicked)
	}
}

func TestAtMostOnePreviewLayer(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.SetPreview(squareGeom)
	engine.SetPreview(squareGeom)
	if n := len(layersOfKind(canvas, KindPreview)); n != 1 {
		t.Fatalf("expected exactly one preview layer, got %d", n)
	}

	engine.SetPreview(nil)
	if n := len(layersOfKind(canvas, KindPreview)); n != 0 {
		t.Fatalf("expected zero preview layers after clear, got %d", n)
	}
}

func TestPreviewFitsBounds(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.SetPreview(squareGeom)

	vp := canvas.Viewport()
	if vp.Bounds == nil {
		t.Fatal("expected bounds fit after preview")
	}
	want := geom.BoundingBox{South: 51.2, North: 51.3, West: 6.5, East: 6.6}
	if *vp.Bounds != want {
		t.Errorf("expected bounds %+v, got %+v", want, *vp.Bounds)
	}
	if vp.Padding != fitPadding {
		t.Errorf("expected fixed padding %d, got %d", fitPadding, vp.Padding)
	}
}

func TestPreviewWithoutBoundsDoesNotRefit(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.SetPreview(json.RawMessage(`{"type":"Polygon","coordinates":[]}`))
	if vp := canvas.Viewport(); vp.Bounds != nil {
		t.Errorf("degenerate preview must not fit bounds, got %+v", vp)
	}
}

func TestFeatureSetChangeClearsPreview(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.SetPreview(squareGeom)
	engine.SetFeatures(twoFeatures())

	if n := len(layersOfKind(canvas, KindPreview)); n != 0 {
		t.Fatalf("expected preview invalidated by feature-set change, got %d", n)
	}
}

func TestFocusRecenterAndBoundsPrecedence(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	engine.Focus(models.ViewportFocus{Lat: 51.22, Lon: 6.77})
	vp := canvas.Viewport()
	if vp.Lat != 51.22 || vp.Lon != 6.77 || vp.Zoom != defaultZoom {
		t.Errorf("expected plain recenter with default zoom, got %+v", vp)
	}
	if vp.Bounds != nil {
		t.Errorf("plain recenter must not fit bounds, got %+v", vp)
	}

	box := &geom.BoundingBox{South: 51.2, North: 51.3, West: 6.5, East: 6.6}
	engine.Focus(models.ViewportFocus{Lat: 51.25, Lon: 6.55, Zoom: 13, BoundingBox: box})
	vp = canvas.Viewport()
	if vp.Bounds == nil || *vp.Bounds != *box {
		t.Fatalf("expected bounds fit to win framing, got %+v", vp)
	}
	// both framing paths agree on the center
	if vp.Lat != 51.25 || vp.Lon != 6.55 {
		t.Errorf("expected centers to agree, got (%v, %v)", vp.Lat, vp.Lon)
	}
}

func TestBaseLayerNeverStacks(t *testing.T) {
	canvas := NewMemoryCanvas()
	engine := NewEngine(canvas, nil)

	if err := engine.SetBaseLayer("streets"); err != nil {
		t.Fatalf("SetBaseLayer: %v", err)
	}
	if err := engine.SetBaseLayer("satellite"); err != nil {
		t.Fatalf("SetBaseLayer: %v", err)
	}

	base := layersOfKind(canvas, KindBase)
	if len(base) != 1 {
		t.Fatalf("expected exactly one base layer, got %d", len(base))
	}
	if base[0].ID != "base-satellite" {
		t.Errorf("expected satellite tiles, got %s", base[0].ID)
	}

	if err := engine.SetBaseLayer("volcano"); err == nil {
		t.Error("expected error for unknown base layer")
	}
}
