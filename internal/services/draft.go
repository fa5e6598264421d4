package services

import (
	"encoding/json"
	"sync"
	"time"

	"aoi-bknd/internal/localcache"
	"aoi-bknd/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DraftSnapshotKey is the local-cache key holding the full draft snapshot.
const DraftSnapshotKey = "aois:v1"

// DraftService holds client-local AOIs that never reach the remote store.
// Every mutation re-serializes the whole collection to the local cache; there
// is no incremental persistence.
type DraftService struct {
	cache localcache.Store
	logr  *zap.Logger

	mu     sync.Mutex
	drafts []models.DraftAOI
}

func NewDraftService(cache localcache.Store, logr *zap.Logger) *DraftService {
	return &DraftService{cache: cache, logr: logr}
}

// Add appends a draft, forcing it visible. A missing id gets a generated one
// and a zero createdAt is stamped now.
func (d *DraftService) Add(draft models.DraftAOI) models.DraftAOI {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	draft.Visible = true

	d.mu.Lock()
	defer d.mu.Unlock()
	d.drafts = append(d.drafts, draft)
	d.persist()
	return draft
}

// Update replaces the draft with the same id. Unknown ids are a no-op.
func (d *DraftService) Update(draft models.DraftAOI) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.drafts {
		if d.drafts[i].ID == draft.ID {
			d.drafts[i] = draft
			break
		}
	}
	d.persist()
}

// Remove deletes the draft with the given id. Unknown ids are a no-op.
func (d *DraftService) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.drafts[:0]
	for _, a := range d.drafts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	d.drafts = kept
	d.persist()
}

// ToggleVisibility flips the visible flag of the draft with the given id.
func (d *DraftService) ToggleVisibility(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.drafts {
		if d.drafts[i].ID == id {
			d.drafts[i].Visible = !d.drafts[i].Visible
			break
		}
	}
	d.persist()
}

// List returns a copy of the collection in insertion order.
func (d *DraftService) List() []models.DraftAOI {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.DraftAOI, len(d.drafts))
	copy(out, d.drafts)
	return out
}

// LoadFromDisk replaces the in-memory collection with the stored snapshot.
// A missing or unparseable snapshot yields an empty collection; corruption
// is logged, never raised.
func (d *DraftService) LoadFromDisk() {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, ok := d.cache.Get(DraftSnapshotKey)
	if !ok {
		d.drafts = []models.DraftAOI{}
		return
	}
	var drafts []models.DraftAOI
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		d.logr.Warn("corrupt draft snapshot, starting empty", zap.Error(err))
		d.drafts = []models.DraftAOI{}
		return
	}
	d.drafts = drafts
}

// persist writes the full snapshot. Callers hold d.mu.
func (d *DraftService) persist() {
	snapshot := d.drafts
	if snapshot == nil {
		snapshot = []models.DraftAOI{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		d.logr.Error("failed to encode draft snapshot", zap.Error(err))
		return
	}
	if err := d.cache.Set(DraftSnapshotKey, string(data)); err != nil {
		d.logr.Error("failed to write draft snapshot", zap.Error(err))
	}
}
