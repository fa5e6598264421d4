package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"aoi-bknd/internal/geocode"
	"aoi-bknd/internal/geom"
	"aoi-bknd/internal/models"

	"go.uber.org/zap"
)

const searchResultZoom = 13

// Geocoder is the place-name search provider.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Result, error)
}

// SearchService debounces keystroke queries against the geocoder and holds
// the transient selection produced by a result click. A query shorter than
// two characters clears results immediately and issues no request; later
// keystrokes cancel the pending request timer (last keystroke wins).
type SearchService struct {
	geocoder Geocoder
	features *FeatureService
	logr     *zap.Logger
	window   time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	results   []geocode.Result
	selection *models.SearchSelection
}

func NewSearchService(geocoder Geocoder, features *FeatureService, logr *zap.Logger, window time.Duration) *SearchService {
	return &SearchService{
		geocoder: geocoder,
		features: features,
		logr:     logr,
		window:   window,
	}
}

// Query registers a keystroke. The geocoder is called at most once per
// debounce window, for the text of the latest call.
func (s *SearchService) Query(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if len([]rune(query)) < 2 {
		s.results = nil
		s.selection = nil
		return
	}

	s.timer = time.AfterFunc(s.window, func() {
		s.run(query)
	})
}

func (s *SearchService) run(query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := s.geocoder.Search(ctx, query)
	if err != nil {
		s.logr.Warn("geocoding search failed", zap.Error(err), zap.String("query", query))
		results = nil
	}

	s.mu.Lock()
	s.results = results
	s.mu.Unlock()
}

// Results returns the latest delivered result set; provider order preserved.
func (s *SearchService) Results() []geocode.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]geocode.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Select turns a result click into the transient selection plus a one-shot
// viewport focus request. The raw geocoder geometry is retained unnormalized
// until an explicit Confirm.
func (s *SearchService) Select(result geocode.Result) (*models.SearchSelection, models.ViewportFocus) {
	selection := &models.SearchSelection{
		DisplayName: result.DisplayName,
		Lat:         result.Lat,
		Lon:         result.Lon,
		BoundingBox: result.BoundingBox,
		GeoJSON:     result.GeoJSON,
	}

	s.mu.Lock()
	s.selection = selection
	s.mu.Unlock()

	return selection, models.ViewportFocus{
		Lat:         result.Lat,
		Lon:         result.Lon,
		Zoom:        searchResultZoom,
		BoundingBox: result.BoundingBox,
	}
}

// Selection returns the current selection, nil when none.
func (s *SearchService) Selection() *models.SearchSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Confirm normalizes the selected outline and saves it as an AOI feature.
// This is the only path from a search result into the feature store; nothing
// is ever auto-saved.
func (s *SearchService) Confirm(ctx context.Context, name string) (*models.AOIFeature, models.Source, error) {
	s.mu.Lock()
	selection := s.selection
	s.mu.Unlock()

	if selection == nil || len(selection.GeoJSON) == 0 {
		return nil, "", ErrNoSelection
	}
	geometry := geom.ExtractGeometry(selection.GeoJSON)
	if geometry == nil {
		return nil, "", ErrMalformedGeoJSON
	}

	if name == "" {
		name = selection.DisplayName
	}
	feature, source := s.features.Save(ctx, models.FeatureDraft{
		Name:     name,
		Geometry: geometry,
	})

	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()

	return feature, source, nil
}
