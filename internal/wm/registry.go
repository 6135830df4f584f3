package wm

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/lofideck/lofideck/internal/geom"
)

// StateStore persists window lifecycle state across sessions. Keys are the
// wire form of WindowType.
type StateStore interface {
	LoadStates() (states map[string]State, maxZ int, err error)
	SaveStates(states map[string]State, maxZ int) error
}

// WindowInfo is one entry of a registry snapshot.
type WindowInfo struct {
	Type      string    `json:"type"`
	Open      bool      `json:"open"`
	Maximized bool      `json:"maximized"`
	Z         int       `json:"z"`
	Rect      geom.Rect `json:"rect"`
}

// Registry is the single source of truth for which windows exist, are open,
// maximized, and their stacking order. The z counter is monotonic for the
// lifetime of the session; a just-focused or just-opened window always
// strictly outranks every previously touched window.
type Registry struct {
	mu       sync.Mutex
	log      *slog.Logger
	states   map[WindowType]State
	maxZ     int
	viewport geom.Size

	positions *PositionStore
	store     StateStore // nil = session-only

	// onChange fires after every mutation, outside the lock.
	onChange func()
}

// NewRegistry creates a registry seeded with all fixed kinds closed, then
// overlays any persisted state. Widget windows from a previous session are
// restored the same way.
func NewRegistry(positions *PositionStore, viewport geom.Size, store StateStore, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		log:       log,
		states:    make(map[WindowType]State),
		viewport:  viewport,
		positions: positions,
		store:     store,
	}
	for _, k := range FixedKinds {
		r.states[Fixed(k)] = State{}
	}
	if store != nil {
		saved, maxZ, err := store.LoadStates()
		if err != nil {
			log.Warn("failed to load window states", "error", err)
		}
		for key, st := range saved {
			t, err := ParseType(key)
			if err != nil {
				continue
			}
			r.states[t] = st
		}
		if maxZ > r.maxZ {
			r.maxZ = maxZ
		}
	}
	return r
}

// OnChange registers a callback invoked after every registry mutation. It is
// called outside the registry lock but may run while a frame gesture lock is
// held, so the callback must only signal (e.g. a non-blocking channel send),
// never call back into the desk synchronously.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// SetViewport updates the viewport used for default placement. Already-open
// windows are not repositioned; a shrinking viewport only affects windows on
// their next drag or resize.
func (r *Registry) SetViewport(v geom.Size) {
	r.mu.Lock()
	r.viewport = v
	r.mu.Unlock()
}

// Viewport returns the current viewport size.
func (r *Registry) Viewport() geom.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewport
}

// MaxZ returns the current top of the z counter.
func (r *Registry) MaxZ() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxZ
}

// State returns the lifecycle state for a window type.
func (r *Registry) State(t WindowType) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[t]
	return st, ok
}

func (r *Registry) checkKnown(t WindowType) error {
	if t.IsWidget() {
		return nil // widgets register on first use
	}
	if _, ok := r.states[t]; !ok {
		return fmt.Errorf("unknown window kind %q", t.Kind)
	}
	return nil
}

// ensure synthesizes state and a cascaded default position for a
// previously-unseen widget type. Caller holds the lock.
func (r *Registry) ensure(t WindowType) {
	if _, ok := r.states[t]; ok {
		return
	}
	r.states[t] = State{}
	if r.positions != nil {
		if _, ok := r.positions.Get(t); !ok {
			r.positions.Set(t, DefaultRect(t, r.viewport, r.widgetCountLocked()-1))
		}
	}
}

func (r *Registry) widgetCountLocked() int {
	n := 0
	for t := range r.states {
		if t.IsWidget() {
			n++
		}
	}
	return n
}

// Open marks a window open and raises it to the top of the stack. Opening a
// window that is already open and already topmost is a no-op, keeping the z
// counter from inflating on repeated clicks. A supplied position seeds the
// position store; otherwise a default is seeded only if the type has no
// stored geometry.
func (r *Registry) Open(t WindowType, pos *geom.Rect) error {
	r.mu.Lock()
	if err := r.checkKnown(t); err != nil {
		r.mu.Unlock()
		return err
	}
	r.ensure(t)

	st := r.states[t]
	if st.Open && st.Z == r.maxZ {
		r.mu.Unlock()
		return nil
	}
	r.maxZ++
	st.Open = true
	st.Z = r.maxZ
	r.states[t] = st

	if r.positions != nil {
		if pos != nil {
			r.positions.Set(t, geom.ClampOrigin(*pos, r.viewport))
		} else if _, ok := r.positions.Get(t); !ok {
			r.positions.Set(t, DefaultRect(t, r.viewport, r.widgetCountLocked()-1))
		}
	}
	r.finishLocked()
	return nil
}

// Close marks a window closed. Z and stored geometry are left untouched;
// reopening assigns a fresh top z rather than restoring prior stacking.
// Closing an already-closed window is a no-op.
func (r *Registry) Close(t WindowType) error {
	r.mu.Lock()
	if err := r.checkKnown(t); err != nil {
		r.mu.Unlock()
		return err
	}
	st, ok := r.states[t]
	if !ok || !st.Open {
		r.mu.Unlock()
		return nil
	}
	st.Open = false
	r.states[t] = st
	r.finishLocked()
	return nil
}

// Toggle opens the window if closed and closes it if open.
func (r *Registry) Toggle(t WindowType) error {
	r.mu.Lock()
	if err := r.checkKnown(t); err != nil {
		r.mu.Unlock()
		return err
	}
	st, seen := r.states[t]
	r.mu.Unlock()
	if seen && st.Open {
		return r.Close(t)
	}
	return r.Open(t, nil)
}

// Focus raises a window to the top of the stack without changing open state.
// Focusing the window that is already topmost is a no-op.
func (r *Registry) Focus(t WindowType) error {
	r.mu.Lock()
	if err := r.checkKnown(t); err != nil {
		r.mu.Unlock()
		return err
	}
	st, ok := r.states[t]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if st.Z == r.maxZ && r.maxZ > 0 {
		r.mu.Unlock()
		return nil
	}
	r.maxZ++
	st.Z = r.maxZ
	r.states[t] = st
	r.finishLocked()
	return nil
}

// ToggleMaximize flips the maximized flag. Stored geometry is untouched;
// maximized rendering is a view-layer override, so un-maximizing returns to
// the prior manual layout exactly.
func (r *Registry) ToggleMaximize(t WindowType) error {
	r.mu.Lock()
	if err := r.checkKnown(t); err != nil {
		r.mu.Unlock()
		return err
	}
	st, ok := r.states[t]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	st.Maximized = !st.Maximized
	r.states[t] = st
	r.finishLocked()
	return nil
}

// Snapshot returns all open windows ordered back-to-front by z. This is the
// render model for the overlay surface.
func (r *Registry) Snapshot() []WindowInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]WindowInfo, 0, len(r.states))
	for t, st := range r.states {
		if !st.Open {
			continue
		}
		info := WindowInfo{
			Type:      t.String(),
			Open:      st.Open,
			Maximized: st.Maximized,
			Z:         st.Z,
		}
		if r.positions != nil {
			if rect, ok := r.positions.Get(t); ok {
				info.Rect = rect
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Z < infos[j].Z })
	return infos
}

// finishLocked persists state and schedules the change callback; the caller
// must hold the lock, which is released here.
func (r *Registry) finishLocked() {
	var fn func()
	if r.store != nil {
		snapshot := make(map[string]State, len(r.states))
		for t, st := range r.states {
			snapshot[t.String()] = st
		}
		if err := r.store.SaveStates(snapshot, r.maxZ); err != nil {
			r.log.Warn("failed to persist window states", "error", err)
		}
	}
	fn = r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}
