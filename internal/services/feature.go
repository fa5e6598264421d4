package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"aoi-bknd/internal/localcache"
	"aoi-bknd/internal/models"
	"aoi-bknd/internal/store"

	"go.uber.org/zap"
)

// FeatureBackupKey is the local-cache key holding the saved-feature mirror.
const FeatureBackupKey = "aoi_features_backup"

// FeatureService is the single source of truth for saved AOI features. The
// remote store is authoritative when reachable; the local cache mirrors the
// latest authoritative read and absorbs writes when the remote is down.
// Every result carries a Source tag so callers can tell which store answered.
type FeatureService struct {
	remote store.Remote
	cache  localcache.Store
	logr   *zap.Logger

	mu          sync.Mutex
	lastLocalID int64
}

func NewFeatureService(remote store.Remote, cache localcache.Store, logr *zap.Logger) *FeatureService {
	return &FeatureService{
		remote: remote,
		cache:  cache,
		logr:   logr,
	}
}

// Save inserts a new feature remotely. On success the mirror is fully
// resynced from the remote store. On failure the record is synthesized with a
// local-only id and appended to the mirror; such a record is not visible to
// peer sessions until the remote store recovers.
func (s *FeatureService) Save(ctx context.Context, draft models.FeatureDraft) (*models.AOIFeature, models.Source) {
	feature := &models.AOIFeature{
		Name:       draft.Name,
		Geometry:   draft.Geometry,
		Properties: draft.Properties,
	}
	if feature.Name == "" {
		feature.Name = models.DefaultFeatureName
	}
	if feature.Properties == nil {
		feature.Properties = map[string]any{}
	}

	saved, err := s.remote.Insert(ctx, feature)
	if err == nil {
		s.resync(ctx)
		return saved, models.SourceRemote
	}
	s.logr.Warn("remote insert failed, falling back to local cache", zap.Error(err))

	now := time.Now().UTC()
	feature.ID = s.nextLocalID(now)
	feature.CreatedAt = now
	feature.UpdatedAt = now

	s.mu.Lock()
	mirror := s.readMirror()
	mirror = append(mirror, *feature)
	s.writeMirror(mirror)
	s.mu.Unlock()

	return feature, models.SourceLocalFallback
}

// List fetches all features from the remote store, newest first, and
// overwrites the mirror with the result. When the remote store is down it
// returns the mirror contents in insertion order instead.
func (s *FeatureService) List(ctx context.Context) ([]models.AOIFeature, models.Source) {
	features, err := s.remote.SelectAll(ctx)
	if err == nil {
		if features == nil {
			features = []models.AOIFeature{}
		}
		s.mu.Lock()
		s.writeMirror(features)
		s.mu.Unlock()
		return features, models.SourceRemote
	}
	s.logr.Warn("remote fetch failed, serving local cache", zap.Error(err))

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readMirror(), models.SourceLocalFallback
}

// Delete removes a feature remotely; true means the remote store confirmed
// the removal. On remote failure the id is dropped from the mirror whatever
// its origin, and false is returned.
func (s *FeatureService) Delete(ctx context.Context, id string) (bool, models.Source) {
	err := s.remote.Delete(ctx, id)
	if err == nil {
		s.resync(ctx)
		return true, models.SourceRemote
	}
	s.logr.Warn("remote delete failed, removing from local cache", zap.Error(err), zap.String("id", id))

	s.mu.Lock()
	mirror := s.readMirror()
	kept := mirror[:0]
	for _, f := range mirror {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	s.writeMirror(kept)
	s.mu.Unlock()

	return false, models.SourceLocalFallback
}

// Update patches a feature remotely, stamping updated_at. On remote failure
// the patch is applied to the mirror copy when one exists, keeping the
// fallback policy consistent with Save and Delete.
func (s *FeatureService) Update(ctx context.Context, id string, patch models.FeatureUpdate) (*models.AOIFeature, models.Source) {
	updated, err := s.remote.Update(ctx, id, patch)
	if err == nil {
		s.resync(ctx)
		return updated, models.SourceRemote
	}
	s.logr.Warn("remote update failed, patching local cache", zap.Error(err), zap.String("id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	mirror := s.readMirror()
	for i := range mirror {
		if mirror[i].ID != id {
			continue
		}
		if patch.Name != nil {
			mirror[i].Name = *patch.Name
		}
		if len(patch.Geometry) > 0 {
			mirror[i].Geometry = patch.Geometry
		}
		if patch.Properties != nil {
			mirror[i].Properties = patch.Properties
		}
		mirror[i].UpdatedAt = time.Now().UTC()
		s.writeMirror(mirror)
		return &mirror[i], models.SourceLocalFallback
	}
	return nil, models.SourceLocalFallback
}

// resync re-fetches the full remote set and overwrites the mirror. A failed
// resync leaves the previous mirror in place.
func (s *FeatureService) resync(ctx context.Context) {
	features, err := s.remote.SelectAll(ctx)
	if err != nil {
		s.logr.Warn("mirror resync failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.writeMirror(features)
	s.mu.Unlock()
}

// nextLocalID derives a "local-" prefixed id from the current time,
// monotonic within the session even when saves land on the same millisecond.
func (s *FeatureService) nextLocalID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.lastLocalID {
		ms = s.lastLocalID + 1
	}
	s.lastLocalID = ms
	return fmt.Sprintf("local-%d", ms)
}

// readMirror returns the cached feature list; a corrupt snapshot degrades to
// an empty list with a logged warning. Callers hold s.mu.
func (s *FeatureService) readMirror() []models.AOIFeature {
	raw, ok := s.cache.Get(FeatureBackupKey)
	if !ok {
		return []models.AOIFeature{}
	}
	var features []models.AOIFeature
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		s.logr.Warn("corrupt feature mirror, starting empty", zap.Error(err))
		return []models.AOIFeature{}
	}
	return features
}

// writeMirror overwrites the cached feature list. Callers hold s.mu.
func (s *FeatureService) writeMirror(features []models.AOIFeature) {
	data, err := json.Marshal(features)
	if err != nil {
		s.logr.Error("failed to encode feature mirror", zap.Error(err))
		return
	}
	if err := s.cache.Set(FeatureBackupKey, string(data)); err != nil {
		s.logr.Error("failed to write feature mirror", zap.Error(err))
	}
}
