package services

import (
	"errors"
	"strings"

	"aoi-bknd/internal/geom"
	"aoi-bknd/internal/models"

	"go.uber.org/zap"
)

const uploadFocusZoom = 12

var (
	// ErrMalformedGeoJSON covers unparseable content and content without a
	// recognized geometry; nothing is staged in either case.
	ErrMalformedGeoJSON = errors.New("file does not contain a valid GeoJSON geometry or feature")

	// ErrConvertFirst marks recognized-but-unhandled geo formats.
	ErrConvertFirst = errors.New("KML/KMZ/shapefile uploads are not supported, convert to GeoJSON first")

	// ErrUnsupportedType marks everything else.
	ErrUnsupportedType = errors.New("unsupported file type, upload a .geojson or .json file")

	// ErrNoSelection is returned when confirming without a selected outline.
	ErrNoSelection = errors.New("no search selection with an outline to confirm")
)

// UploadService turns an uploaded file into a staged pending candidate:
// normalized geometry, original document for the outline, and a viewport
// focus request. Nothing is persisted; saving is a separate explicit action.
type UploadService struct {
	logr *zap.Logger
}

func NewUploadService(logr *zap.Logger) *UploadService {
	return &UploadService{logr: logr}
}

// Intake validates the file by name suffix and stages its geometry. Errors
// leave no partial state behind.
func (u *UploadService) Intake(filename string, content []byte) (*models.PendingCandidate, error) {
	name := strings.ToLower(filename)

	switch {
	case strings.HasSuffix(name, ".geojson"), strings.HasSuffix(name, ".json"):
		return u.stage(filename, content)
	case strings.HasSuffix(name, ".kml"),
		strings.HasSuffix(name, ".kmz"),
		strings.HasSuffix(name, ".shp"),
		strings.HasSuffix(name, ".zip"):
		return nil, ErrConvertFirst
	default:
		return nil, ErrUnsupportedType
	}
}

func (u *UploadService) stage(filename string, content []byte) (*models.PendingCandidate, error) {
	geometry := geom.ExtractGeometry(content)
	if geometry == nil {
		u.logr.Warn("rejected upload without usable geometry", zap.String("file", filename))
		return nil, ErrMalformedGeoJSON
	}

	candidate := &models.PendingCandidate{
		Geometry: geometry,
		Outline:  content,
	}

	if box := geom.ComputeBoundingBox(content); box != nil {
		lat, lon := box.Center()
		candidate.Focus = &models.ViewportFocus{
			Lat:         lat,
			Lon:         lon,
			Zoom:        uploadFocusZoom,
			BoundingBox: box,
		}
	}
	return candidate, nil
}
