package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"aoi-bknd/internal/geocode"
	"aoi-bknd/internal/mapsync"
	"aoi-bknd/internal/models"
	"aoi-bknd/internal/services"

	"go.uber.org/zap"
)

// SearchHandler handles the place-name search flow: debounced queries, the
// transient result selection, showing the outline, and the explicit confirm
// that turns an outline into a saved feature.
type SearchHandler struct {
	service  *services.SearchService
	features *services.FeatureService
	engine   *mapsync.Engine
	logr     *zap.Logger
}

func NewSearchHandler(svc *services.SearchService, features *services.FeatureService, engine *mapsync.Engine, logr *zap.Logger) *SearchHandler {
	return &SearchHandler{service: svc, features: features, engine: engine, logr: logr}
}

// Search handles GET /search?q= — each call counts as one keystroke against
// the debounce window; the response carries whatever results have been
// delivered so far.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.service.Query(r.URL.Query().Get("q"))

	results := h.service.Results()
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// SelectResult handles POST /search/select — a result click becomes the
// transient selection plus a one-shot viewport focus.
func (h *SearchHandler) SelectResult(w http.ResponseWriter, r *http.Request) {
	var result geocode.Result
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		h.logr.Error("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	selection, focus := h.service.Select(result)
	if h.engine != nil {
		h.engine.Focus(focus)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"selection": selection,
		"focus":     focus,
	})
}

// ShowOutline handles POST /search/outline — renders the selected result's
// raw geometry as the dashed preview, without saving anything.
func (h *SearchHandler) ShowOutline(w http.ResponseWriter, r *http.Request) {
	selection := h.service.Selection()
	if selection == nil || len(selection.GeoJSON) == 0 {
		writeError(w, http.StatusConflict, "no selected result with an outline")
		return
	}
	if h.engine != nil {
		h.engine.SetPreview(selection.GeoJSON)
	}
	writeJSON(w, http.StatusOK, map[string]any{"outline": json.RawMessage(selection.GeoJSON)})
}

// ConfirmSelection handles POST /search/confirm — the only path from a
// search outline into the feature store.
func (h *SearchHandler) ConfirmSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	feature, source, err := h.service.Confirm(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSelection):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrMalformedGeoJSON):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logr.Error("failed to confirm selection", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to confirm selection")
		}
		return
	}

	// The feature set changed; redrawing also invalidates the outline.
	if h.engine != nil {
		features, _ := h.features.List(r.Context())
		h.engine.SetFeatures(features)
	}

	status := http.StatusCreated
	if source == models.SourceLocalFallback {
		status = http.StatusAccepted
	}
	writeJSON(w, status, models.FeatureResponse{Feature: feature, Source: source})
}
