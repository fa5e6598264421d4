package handlers

import (
	"encoding/json"
	"net/http"

	"aoi-bknd/internal/geom"
	"aoi-bknd/internal/mapsync"
	"aoi-bknd/internal/models"

	"go.uber.org/zap"
)

// MapHandler exposes the reconciliation engine's state over HTTP: the
// rendered layer set, selection, preview and viewport commands. A browser
// client mirrors this state onto the real map widget.
type MapHandler struct {
	engine *mapsync.Engine
	canvas *mapsync.MemoryCanvas
	logr   *zap.Logger
}

func NewMapHandler(engine *mapsync.Engine, canvas *mapsync.MemoryCanvas, logr *zap.Logger) *MapHandler {
	return &MapHandler{engine: engine, canvas: canvas, logr: logr}
}

// Layers handles GET /map/layers
func (h *MapHandler) Layers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"layers":   h.canvas.Layers(),
		"viewport": h.canvas.Viewport(),
		"selected": h.engine.Selected(),
	})
}

// Select handles POST /map/select — direct selection by feature id; an empty
// id clears the selection.
func (h *MapHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.engine.Select(req.ID)
	writeJSON(w, http.StatusOK, map[string]string{"selected": req.ID})
}

// Click handles POST /map/click — a click event from the widget carrying a
// rendered layer id, resolved back to a feature identity.
func (h *MapHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LayerID string `json:"layerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.engine.Click(req.LayerID)
	writeJSON(w, http.StatusOK, map[string]string{"selected": h.engine.Selected()})
}

// SetPreview handles POST /map/preview
func (h *MapHandler) SetPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GeoJSON json.RawMessage `json:"geojson"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.GeoJSON) == 0 || string(req.GeoJSON) == "null" {
		writeError(w, http.StatusBadRequest, "geojson is required, use DELETE to clear")
		return
	}
	h.engine.SetPreview(req.GeoJSON)
	writeJSON(w, http.StatusOK, map[string]bool{"preview": true})
}

// ClearPreview handles DELETE /map/preview
func (h *MapHandler) ClearPreview(w http.ResponseWriter, r *http.Request) {
	h.engine.SetPreview(nil)
	writeJSON(w, http.StatusOK, map[string]bool{"preview": false})
}

// Focus handles POST /map/focus — a one-shot viewport focus request.
func (h *MapHandler) Focus(w http.ResponseWriter, r *http.Request) {
	var req models.ViewportFocus
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.engine.Focus(req)
	writeJSON(w, http.StatusOK, h.canvas.Viewport())
}

// SetBaseLayer handles POST /map/base-layer
func (h *MapHandler) SetBaseLayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.SetBaseLayer(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"baseLayer": req.Name})
}

// Draw handles POST /map/draw — a shape-drawn event from the widget. The
// geometry is normalized and staged as a pending candidate with its outline
// shown; saving remains an explicit POST /features.
func (h *MapHandler) Draw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Geometry json.RawMessage `json:"geometry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	geometry := geom.ExtractGeometry(req.Geometry)
	if geometry == nil {
		writeError(w, http.StatusBadRequest, "geometry is not a recognized GeoJSON shape")
		return
	}

	h.engine.SetPreview(geometry)

	candidate := models.PendingCandidate{Geometry: geometry, Outline: geometry}
	if box := geom.ComputeBoundingBox(geometry); box != nil {
		lat, lon := box.Center()
		candidate.Focus = &models.ViewportFocus{Lat: lat, Lon: lon, BoundingBox: box}
	}
	writeJSON(w, http.StatusOK, candidate)
}
