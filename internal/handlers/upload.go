package handlers

import (
	"errors"
	"io"
	"net/http"

	"aoi-bknd/internal/mapsync"
	"aoi-bknd/internal/services"

	"go.uber.org/zap"
)

const maxUploadBytes = 16 << 20 // 16 MiB

// UploadHandler handles GeoJSON file intake. A successful upload stages a
// pending candidate and shows its outline; saving is a separate explicit
// POST /features.
type UploadHandler struct {
	service *services.UploadService
	engine  *mapsync.Engine
	logr    *zap.Logger
}

func NewUploadHandler(svc *services.UploadService, engine *mapsync.Engine, logr *zap.Logger) *UploadHandler {
	return &UploadHandler{service: svc, engine: engine, logr: logr}
}

// Upload handles POST /upload (multipart, field "file").
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.logr.Error("failed to read upload", zap.Error(err))
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	candidate, err := h.service.Intake(header.Filename, content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConvertFirst), errors.Is(err, services.ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, services.ErrMalformedGeoJSON):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logr.Error("upload intake failed", zap.Error(err), zap.String("file", header.Filename))
			writeError(w, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	if h.engine != nil {
		h.engine.SetPreview(candidate.Outline)
		if candidate.Focus != nil {
			h.engine.Focus(*candidate.Focus)
		}
	}

	writeJSON(w, http.StatusOK, candidate)
}
