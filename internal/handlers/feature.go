package handlers

import (
	"encoding/json"
	"net/http"

	"aoi-bknd/internal/geom"
	"aoi-bknd/internal/mapsync"
	"aoi-bknd/internal/models"
	"aoi-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FeatureHandler handles HTTP requests for saved AOI features. Every
// mutation pushes the refreshed feature set into the reconciliation engine,
// which also invalidates any active preview outline.
type FeatureHandler struct {
	service *services.FeatureService
	engine  *mapsync.Engine
	logr    *zap.Logger
}

func NewFeatureHandler(svc *services.FeatureService, engine *mapsync.Engine, logr *zap.Logger) *FeatureHandler {
	return &FeatureHandler{service: svc, engine: engine, logr: logr}
}

// ListFeatures handles GET /features
func (h *FeatureHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	features, source := h.service.List(r.Context())

	writeJSON(w, http.StatusOK, models.FeatureListResponse{
		Features: features,
		Count:    len(features),
		Source:   source,
	})
}

// CreateFeature handles POST /features
func (h *FeatureHandler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	var req models.FeatureDraft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logr.Error("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Accept a Feature or FeatureCollection wrapper but store only the
	// canonical bare geometry.
	geometry := geom.ExtractGeometry(req.Geometry)
	if geometry == nil {
		writeError(w, http.StatusBadRequest, "geometry is missing or not a recognized GeoJSON shape")
		return
	}
	req.Geometry = geometry

	feature, source := h.service.Save(r.Context(), req)
	h.refreshEngine(r)

	status := http.StatusCreated
	if source == models.SourceLocalFallback {
		// Accepted into the local fallback, not confirmed remotely.
		status = http.StatusAccepted
	}
	writeJSON(w, status, models.FeatureResponse{Feature: feature, Source: source})
}

// UpdateFeature handles PATCH /features/{id}
func (h *FeatureHandler) UpdateFeature(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.FeatureUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logr.Error("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Geometry) > 0 {
		geometry := geom.ExtractGeometry(req.Geometry)
		if geometry == nil {
			writeError(w, http.StatusBadRequest, "geometry is not a recognized GeoJSON shape")
			return
		}
		req.Geometry = geometry
	}

	feature, source := h.service.Update(r.Context(), id, req)
	if feature == nil {
		writeError(w, http.StatusNotFound, "feature not found")
		return
	}
	h.refreshEngine(r)

	writeJSON(w, http.StatusOK, models.FeatureResponse{Feature: feature, Source: source})
}

// DeleteFeature handles DELETE /features/{id}
func (h *FeatureHandler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, source := h.service.Delete(r.Context(), id)
	h.refreshEngine(r)

	if h.engine != nil && h.engine.Selected() == id {
		h.engine.Select("")
	}

	writeJSON(w, http.StatusOK, models.DeleteResponse{Deleted: deleted, Source: source})
}

func (h *FeatureHandler) refreshEngine(r *http.Request) {
	if h.engine == nil {
		return
	}
	features, _ := h.service.List(r.Context())
	h.engine.SetFeatures(features)
}
