package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"aoi-bknd/internal/localcache"
	"aoi-bknd/internal/models"
	"aoi-bknd/internal/store"

	"go.uber.org/zap"
)

var errRemoteDown = errors.New("remote store unavailable")

// stubRemote is an in-memory store.Remote whose availability can be toggled.
type stubRemote struct {
	down     bool
	features []models.AOIFeature
	nextID   int
}

func (r *stubRemote) Insert(_ context.Context, f *models.AOIFeature) (*models.AOIFeature, error) {
	if r.down {
		return nil, errRemoteDown
	}
	r.nextID++
	f.ID = fmt.Sprintf("remote-%d", r.nextID)
	// newest first, matching the created_at DESC ordering
	r.features = append([]models.AOIFeature{*f}, r.features...)
	return f, nil
}

func (r *stubRemote) SelectAll(context.Context) ([]models.AOIFeature, error) {
	if r.down {
		return nil, errRemoteDown
	}
	out := make([]models.AOIFeature, len(r.features))
	copy(out, r.features)
	return out, nil
}

func (r *stubRemote) Delete(_ context.Context, id string) error {
	if r.down {
		return errRemoteDown
	}
	for i, f := range r.features {
		if f.ID == id {
			r.features = append(r.features[:i], r.features[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *stubRemote) Update(_ context.Context, id string, patch models.FeatureUpdate) (*models.AOIFeature, error) {
	if r.down {
		return nil, errRemoteDown
	}
	for i := range r.features {
		if r.features[i].ID == id {
			if patch.Name != nil {
				r.features[i].Name = *patch.Name
			}
			if len(patch.Geometry) > 0 {
				r.features[i].Geometry = patch.Geometry
			}
			return &r.features[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func newFeatureFixture(down bool) (*FeatureService, *stubRemote, *localcache.Memory) {
	remote := &stubRemote{down: down}
	cache := localcache.NewMemory()
	svc := NewFeatureService(remote, cache, zap.NewNop())
	return svc, remote, cache
}

var polygonG = json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)

func TestSaveRemoteSuccess(t *testing.T) {
	svc, _, _ := newFeatureFixture(false)
	ctx := context.Background()

	saved, source := svc.Save(ctx, models.FeatureDraft{Name: "Harbor", Geometry: polygonG})
	if source != models.SourceRemote {
		t.Fatalf("expected remote source, got %s", source)
	}
	if saved == nil || !strings.HasPrefix(saved.ID, "remote-") {
		t.Fatalf("expected remote-assigned id, got %+v", saved)
	}

	// Mirror was resynced: a failing remote read now serves the same record.
	features, source := svc.List(ctx)
	if source != models.SourceRemote {
		t.Fatalf("expected remote listing, got %s", source)
	}
	if len(features) != 1 || features[0].ID != saved.ID {
		t.Fatalf("unexpected listing %+v", features)
	}
}

func TestSaveFallbackConsistency(t *testing.T) {
	svc, _, _ := newFeatureFixture(true)
	ctx := context.Background()

	saved, source := svc.Save(ctx, models.FeatureDraft{Name: "X", Geometry: polygonG})
	if source != models.SourceLocalFallback {
		t.Fatalf("expected local fallback, got %s", source)
	}
	if !strings.HasPrefix(saved.ID, "local-") {
		t.Errorf("expected local- id prefix, got %s", saved.ID)
	}

	features, source := svc.List(ctx)
	if source != models.SourceLocalFallback {
		t.Fatalf("expected fallback listing, got %s", source)
	}
	if len(features) != 1 {
		t.Fatalf("expected 1 cached feature, got %d", len(features))
	}
	if features[0].Name != "X" {
		t.Errorf("expected name X, got %s", features[0].Name)
	}
	if string(features[0].Geometry) != string(polygonG) {
		t.Errorf("expected geometry preserved, got %s", features[0].Geometry)
	}
}

func TestSaveDefaultsNameAndProperties(t *testing.T) {
	svc, _, _ := newFeatureFixture(true)

	saved, _ := svc.Save(context.Background(), models.FeatureDraft{Geometry: polygonG})
	if saved.Name != models.DefaultFeatureName {
		t.Errorf("expected placeholder name, got %q", saved.Name)
	}
	if saved.Properties == nil {
		t.Error("expected empty properties mapping, got nil")
	}
}

func TestLocalIDsMonotonic(t *testing.T) {
	svc, _, _ := newFeatureFixture(true)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		saved, _ := svc.Save(ctx, models.FeatureDraft{Geometry: polygonG})
		if seen[saved.ID] {
			t.Fatalf("duplicate local id %s", saved.ID)
		}
		seen[saved.ID] = true
	}
}

func TestListOverwritesMirror(t *testing.T) {
	svc, remote, cache := newFeatureFixture(false)
	ctx := context.Background()

	// Stale local-only record in the mirror, then a successful remote read.
	_ = cache.Set(FeatureBackupKey, `[{"id":"local-1","name":"stale"}]`)
	remote.features = []models.AOIFeature{{ID: "remote-9", Name: "fresh", Geometry: polygonG}}

	features, source := svc.List(ctx)
	if source != models.SourceRemote || len(features) != 1 || features[0].ID != "remote-9" {
		t.Fatalf("unexpected remote listing %+v (%s)", features, source)
	}

	// The mirror is a mirror, not a union: the stale record is gone.
	remote.down = true
	features, source = svc.List(ctx)
	if source != models.SourceLocalFallback {
		t.Fatalf("expected fallback, got %s", source)
	}
	if len(features) != 1 || features[0].ID != "remote-9" {
		t.Fatalf("expected overwritten mirror, got %+v", features)
	}
}

func TestDeleteRemoteSuccess(t *testing.T) {
	svc, _, _ := newFeatureFixture(false)
	ctx := context.Background()

	saved, _ := svc.Save(ctx, models.FeatureDraft{Geometry: polygonG})
	ok, source := svc.Delete(ctx, saved.ID)
	if !ok || source != models.SourceRemote {
		t.Fatalf("expected confirmed remote delete, got ok=%v source=%s", ok, source)
	}
	if features, _ := svc.List(ctx); len(features) != 0 {
		t.Errorf("expected empty listing after delete, got %+v", features)
	}
}

func TestDeleteFallbackRemovesLocally(t *testing.T) {
	svc, remote, _ := newFeatureFixture(true)
	ctx := context.Background()

	saved, _ := svc.Save(ctx, models.FeatureDraft{Geometry: polygonG})

	ok, source := svc.Delete(ctx, saved.ID)
	if ok {
		t.Error("fallback delete must not report remote confirmation")
	}
	if source != models.SourceLocalFallback {
		t.Errorf("expected fallback source, got %s", source)
	}
	if features, _ := svc.List(ctx); len(features) != 0 {
		t.Errorf("expected local record removed, got %+v", features)
	}
	_ = remote
}

func TestDeleteMissingEverywhere(t *testing.T) {
	for _, down := range []bool{true, false} {
		svc, remote, _ := newFeatureFixture(down)
		ctx := context.Background()

		ok, _ := svc.Delete(ctx, "no-such-id")
		if ok {
			t.Errorf("down=%v: expected failure deleting unknown id", down)
		}
		if len(remote.features) != 0 {
			t.Errorf("down=%v: remote contents altered", down)
		}
		if features, _ := svc.List(ctx); len(features) != 0 {
			t.Errorf("down=%v: local contents altered: %+v", down, features)
		}
	}
}

func TestUpdateRemoteSuccess(t *testing.T) {
	svc, _, _ := newFeatureFixture(false)
	ctx := context.Background()

	saved, _ := svc.Save(ctx, models.FeatureDraft{Name: "before", Geometry: polygonG})

	name := "after"
	updated, source := svc.Update(ctx, saved.ID, models.FeatureUpdate{Name: &name})
	if source != models.SourceRemote || updated == nil || updated.Name != "after" {
		t.Fatalf("unexpected update result %+v (%s)", updated, source)
	}
}

func TestUpdateFallbackPatchesMirror(t *testing.T) {
	svc, remote, _ := newFeatureFixture(false)
	ctx := context.Background()

	saved, _ := svc.Save(ctx, models.FeatureDraft{Name: "before", Geometry: polygonG})
	remote.down = true

	name := "after"
	updated, source := svc.Update(ctx, saved.ID, models.FeatureUpdate{Name: &name})
	if source != models.SourceLocalFallback {
		t.Fatalf("expected fallback source, got %s", source)
	}
	if updated == nil || updated.Name != "after" {
		t.Fatalf("expected mirror copy patched, got %+v", updated)
	}

	features, _ := svc.List(ctx)
	if len(features) != 1 || features[0].Name != "after" {
		t.Errorf("expected patched mirror to persist, got %+v", features)
	}
}

func TestUpdateMissingReturnsNil(t *testing.T) {
	svc, _, _ := newFeatureFixture(true)

	name := "whatever"
	updated, source := svc.Update(context.Background(), "no-such-id", models.FeatureUpdate{Name: &name})
	if updated != nil {
		t.Errorf("expected nil for unknown id, got %+v", updated)
	}
	if source != models.SourceLocalFallback {
		t.Errorf("expected fallback source, got %s", source)
	}
}

func TestCorruptMirrorDegradesToEmpty(t *testing.T) {
	svc, _, cache := newFeatureFixture(true)

	_ = cache.Set(FeatureBackupKey, "{not json")
	features, source := svc.List(context.Background())
	if source != models.SourceLocalFallback {
		t.Fatalf("expected fallback, got %s", source)
	}
	if len(features) != 0 {
		t.Errorf("expected empty list from corrupt mirror, got %+v", features)
	}
}
