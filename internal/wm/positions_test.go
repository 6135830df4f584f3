package wm

import (
	"errors"
	"sync"
	"testing"

	"github.com/lofideck/lofideck/internal/geom"
)

type fakeGeometryStore struct {
	mu     sync.Mutex
	saved  map[string]geom.Rect
	saves  int
	failed bool
}

func (s *fakeGeometryStore) LoadGeometry() (map[string]geom.Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]geom.Rect, len(s.saved))
	for k, v := range s.saved {
		out[k] = v
	}
	return out, nil
}

func (s *fakeGeometryStore) SaveGeometry(m map[string]geom.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return errors.New("quota exceeded")
	}
	s.saved = make(map[string]geom.Rect, len(m))
	for k, v := range m {
		s.saved[k] = v
	}
	s.saves++
	return nil
}

func TestUpdate_MergesPartialFields(t *testing.T) {
	ps := NewPositionStore(nil, 0, nil)
	typ := Fixed(KindTasks)
	ps.Set(typ, geom.Rect{X: 10, Y: 20, Width: 300, Height: 400})

	x := 50
	got := ps.Update(typ, Patch{X: &x})
	if got.X != 50 || got.Y != 20 || got.Width != 300 || got.Height != 400 {
		t.Fatalf("unspecified fields not preserved: %+v", got)
	}

	w, h := 320, 420
	got = ps.Update(typ, Patch{Width: &w, Height: &h})
	if got.X != 50 || got.Width != 320 || got.Height != 420 {
		t.Fatalf("size merge wrong: %+v", got)
	}
}

func TestFlush_CoalescesToLatestValue(t *testing.T) {
	store := &fakeGeometryStore{}
	ps := NewPositionStore(store, 0, nil)
	typ := Fixed(KindNotes)

	// Many in-memory writes, one durable flush.
	for i := 0; i < 100; i++ {
		x := i
		ps.Update(typ, Patch{X: &x})
	}
	ps.Flush()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saves != 1 {
		t.Fatalf("expected a single coalesced save, got %d", store.saves)
	}
	if store.saved["notes"].X != 99 {
		t.Fatalf("expected latest value 99, got %d", store.saved["notes"].X)
	}
}

func TestFlush_NoopWhenClean(t *testing.T) {
	store := &fakeGeometryStore{}
	ps := NewPositionStore(store, 0, nil)

	ps.Flush()
	ps.Flush()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saves != 0 {
		t.Fatalf("expected no saves for clean store, got %d", store.saves)
	}
}

func TestFlush_FailureKeepsMemoryAuthoritative(t *testing.T) {
	store := &fakeGeometryStore{failed: true}
	ps := NewPositionStore(store, 0, nil)
	typ := Fixed(KindTimer)

	ps.Set(typ, geom.Rect{X: 5, Y: 6, Width: 320, Height: 380})
	ps.Flush()

	rect, ok := ps.Get(typ)
	if !ok || rect.X != 5 {
		t.Fatalf("in-memory state lost after failed flush: %+v ok=%v", rect, ok)
	}

	// Failed writes stay dirty and retry on the next flush.
	store.mu.Lock()
	store.failed = false
	store.mu.Unlock()
	ps.Flush()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saved["timer"].X != 5 {
		t.Fatalf("retry flush did not persist: %+v", store.saved)
	}
}

func TestNewPositionStore_LoadsPersistedGeometry(t *testing.T) {
	store := &fakeGeometryStore{saved: map[string]geom.Rect{
		"notes":      {X: 1, Y: 2, Width: 3, Height: 4},
		"widget-abc": {X: 9, Y: 8, Width: 7, Height: 6},
		"garbage!!":  {X: 0, Y: 0, Width: 0, Height: 0},
	}}
	ps := NewPositionStore(store, 0, nil)

	if r, ok := ps.Get(Fixed(KindNotes)); !ok || r.X != 1 {
		t.Fatalf("fixed geometry not loaded: %+v ok=%v", r, ok)
	}
	if r, ok := ps.Get(Widget("abc")); !ok || r.X != 9 {
		t.Fatalf("widget geometry not loaded: %+v ok=%v", r, ok)
	}
	if _, ok := ps.Get(WindowType{Kind: Kind("garbage!!")}); ok {
		t.Fatal("unparseable key should be skipped")
	}
}
