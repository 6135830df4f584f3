package wm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lofideck/lofideck/internal/geom"
)

// GeometryStore persists window geometry across sessions. Keys are the wire
// form of WindowType.
type GeometryStore interface {
	LoadGeometry() (map[string]geom.Rect, error)
	SaveGeometry(map[string]geom.Rect) error
}

// Patch is a partial geometry update. Nil fields are preserved.
type Patch struct {
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// PositionStore holds per-window geometry. Updates land in memory at pointer
// rate; durable writes are coalesced to the latest value and flushed at a
// fixed interval so a drag gesture never blocks on storage.
type PositionStore struct {
	mu    sync.Mutex
	log   *slog.Logger
	rects map[WindowType]geom.Rect

	store    GeometryStore // nil = in-memory only
	interval time.Duration
	dirty    bool
}

// DefaultFlushInterval bounds durable geometry writes to well under the
// pointer event rate.
const DefaultFlushInterval = 250 * time.Millisecond

// NewPositionStore creates a store, loading any previously persisted
// geometry. A load failure is logged and treated as an empty store.
func NewPositionStore(store GeometryStore, interval time.Duration, log *slog.Logger) *PositionStore {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ps := &PositionStore{
		log:      log,
		rects:    make(map[WindowType]geom.Rect),
		store:    store,
		interval: interval,
	}
	if store != nil {
		saved, err := store.LoadGeometry()
		if err != nil {
			log.Warn("failed to load window geometry", "error", err)
		}
		for key, r := range saved {
			t, err := ParseType(key)
			if err != nil {
				continue
			}
			ps.rects[t] = r
		}
	}
	return ps
}

// Get returns the stored geometry for a window type. Geometry survives a
// window being closed so reopening restores the last layout.
func (ps *PositionStore) Get(t WindowType) (geom.Rect, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	r, ok := ps.rects[t]
	return r, ok
}

// Set replaces the stored geometry for a window type.
func (ps *PositionStore) Set(t WindowType, r geom.Rect) {
	ps.mu.Lock()
	ps.rects[t] = r
	ps.dirty = true
	ps.mu.Unlock()
}

// Update merges the patch into the stored geometry and returns the result.
// Unspecified fields keep their current value. Safe to call once per
// animation frame during a drag.
func (ps *PositionStore) Update(t WindowType, p Patch) geom.Rect {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	r := ps.rects[t]
	if p.X != nil {
		r.X = *p.X
	}
	if p.Y != nil {
		r.Y = *p.Y
	}
	if p.Width != nil {
		r.Width = *p.Width
	}
	if p.Height != nil {
		r.Height = *p.Height
	}
	ps.rects[t] = r
	ps.dirty = true
	return r
}

// Run flushes dirty geometry to durable storage at the configured interval
// until ctx is cancelled, then performs a final flush. Callers own exactly
// one Run per store.
func (ps *PositionStore) Run(ctx context.Context) {
	if ps.store == nil {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(ps.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			ps.Flush()
			return
		case <-ticker.C:
			ps.Flush()
		}
	}
}

// Flush writes the current geometry to durable storage if anything changed
// since the last flush. Write failures are logged and the in-memory state
// stays authoritative.
func (ps *PositionStore) Flush() {
	if ps.store == nil {
		return
	}
	ps.mu.Lock()
	if !ps.dirty {
		ps.mu.Unlock()
		return
	}
	snapshot := make(map[string]geom.Rect, len(ps.rects))
	for t, r := range ps.rects {
		snapshot[t.String()] = r
	}
	ps.dirty = false
	ps.mu.Unlock()

	if err := ps.store.SaveGeometry(snapshot); err != nil {
		ps.log.Warn("failed to persist window geometry", "error", err)
		ps.mu.Lock()
		ps.dirty = true
		ps.mu.Unlock()
	}
}
