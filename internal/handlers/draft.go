package handlers

import (
	"encoding/json"
	"net/http"

	"aoi-bknd/internal/models"
	"aoi-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DraftHandler handles HTTP requests for client-local draft AOIs.
type DraftHandler struct {
	service *services.DraftService
	logr    *zap.Logger
}

func NewDraftHandler(svc *services.DraftService, logr *zap.Logger) *DraftHandler {
	return &DraftHandler{service: svc, logr: logr}
}

// ListDrafts handles GET /drafts
func (h *DraftHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts := h.service.List()
	writeJSON(w, http.StatusOK, models.DraftListResponse{Drafts: drafts, Count: len(drafts)})
}

// CreateDraft handles POST /drafts
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req models.DraftAOI
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logr.Error("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.GeoJSON) == 0 {
		writeError(w, http.StatusBadRequest, "geojson is required")
		return
	}

	added := h.service.Add(req)
	writeJSON(w, http.StatusCreated, added)
}

// UpdateDraft handles PUT /drafts/{id}
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req models.DraftAOI
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logr.Error("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = chi.URLParam(r, "id")

	h.service.Update(req)
	writeJSON(w, http.StatusOK, req)
}

// DeleteDraft handles DELETE /drafts/{id}
func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	h.service.Remove(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ToggleDraft handles POST /drafts/{id}/toggle
func (h *DraftHandler) ToggleDraft(w http.ResponseWriter, r *http.Request) {
	h.service.ToggleVisibility(chi.URLParam(r, "id"))

	drafts := h.service.List()
	writeJSON(w, http.StatusOK, models.DraftListResponse{Drafts: drafts, Count: len(drafts)})
}
