package wm

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lofideck/lofideck/internal/geom"
)

// Edge identifies which window edges participate in a resize gesture.
// Corners set two flags and compose both edge rules independently.
type Edge struct {
	N, S, E, W bool
}

// ParseEdge parses a compass handle name: n, ne, e, se, s, sw, w, nw.
func ParseEdge(s string) (Edge, error) {
	var e Edge
	switch strings.ToLower(s) {
	case "n":
		e.N = true
	case "ne":
		e.N, e.E = true, true
	case "e":
		e.E = true
	case "se":
		e.S, e.E = true, true
	case "s":
		e.S = true
	case "sw":
		e.S, e.W = true, true
	case "w":
		e.W = true
	case "nw":
		e.N, e.W = true, true
	default:
		return Edge{}, fmt.Errorf("unknown resize edge %q", s)
	}
	return e, nil
}

func (e Edge) String() string {
	var b strings.Builder
	if e.N {
		b.WriteByte('n')
	}
	if e.S {
		b.WriteByte('s')
	}
	if e.E {
		b.WriteByte('e')
	}
	if e.W {
		b.WriteByte('w')
	}
	return b.String()
}

type frameMode int

const (
	modeIdle frameMode = iota
	modeDragging
	modeResizing
)

func (m frameMode) String() string {
	switch m {
	case modeIdle:
		return "idle"
	case modeDragging:
		return "dragging"
	case modeResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Default animation timings for the mount and exit transitions.
const (
	DefaultMountDelay   = 50 * time.Millisecond
	DefaultExitDuration = 200 * time.Millisecond
)

// Frame owns the interaction state of one open window: drag and resize
// gestures, visibility for the mount/exit animation, and the deferred close.
// Dragging and resizing are mutually exclusive; a resize start while a drag
// is active is ignored (checked via state, not event target, since handles
// overlap near corners).
type Frame struct {
	mu  sync.Mutex
	log *slog.Logger

	typ WindowType
	reg *Registry
	pos *PositionStore

	mode frameMode
	edge Edge

	startPointer geom.Point
	startRect    geom.Rect

	visible bool
	closing bool
	removed bool

	mountDelay   time.Duration
	exitDuration time.Duration
	mountTimer   *time.Timer
	closeTimer   *time.Timer

	onRemoved func()
}

// NewFrame creates the interaction state for one window instance. The frame
// starts hidden; Mount schedules the flip to visible so the entry transition
// can play from the just-appeared state.
func NewFrame(t WindowType, reg *Registry, pos *PositionStore, log *slog.Logger) *Frame {
	if log == nil {
		log = slog.Default()
	}
	return &Frame{
		log:          log,
		typ:          t,
		reg:          reg,
		pos:          pos,
		mountDelay:   DefaultMountDelay,
		exitDuration: DefaultExitDuration,
	}
}

// OnRemoved registers a callback fired after the deferred close has
// actually removed the window. The callback must only do bookkeeping; it
// runs on the timer goroutine.
func (f *Frame) OnRemoved(fn func()) {
	f.mu.Lock()
	f.onRemoved = fn
	f.mu.Unlock()
}

// SetAnimationTimings overrides the mount delay and exit duration.
func (f *Frame) SetAnimationTimings(mount, exit time.Duration) {
	f.mu.Lock()
	f.mountDelay = mount
	f.exitDuration = exit
	f.mu.Unlock()
}

// Type returns the window type this frame belongs to.
func (f *Frame) Type() WindowType { return f.typ }

// Visible reports whether the window should currently render visible.
func (f *Frame) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

// Mount schedules the hidden→visible flip after the mount delay.
func (f *Frame) Mount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visible || f.closing || f.mountTimer != nil {
		return
	}
	f.mountTimer = time.AfterFunc(f.mountDelay, func() {
		f.mu.Lock()
		if !f.closing {
			f.visible = true
		}
		f.mountTimer = nil
		f.mu.Unlock()
	})
}

// StartDrag begins a drag gesture from the given pointer position. Returns
// false when the gesture cannot start: window maximized, a gesture already
// active, or the window is mid-close.
func (f *Frame) StartDrag(p geom.Point) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != modeIdle || f.closing {
		return false
	}
	st, ok := f.reg.State(f.typ)
	if !ok || st.Maximized {
		return false
	}
	rect, ok := f.pos.Get(f.typ)
	if !ok {
		rect = DefaultRect(f.typ, f.reg.Viewport(), 0)
	}
	if err := f.reg.Focus(f.typ); err != nil {
		return false
	}
	f.mode = modeDragging
	f.startPointer = p
	f.startRect = rect
	return true
}

// Drag applies pointer movement to a drag in progress. The candidate origin
// is the drag origin plus the pointer delta, clamped on both axes so the
// window stays inside the viewport.
func (f *Frame) Drag(p geom.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != modeDragging {
		return
	}
	viewport := f.reg.Viewport()
	x := geom.Clamp(f.startRect.X+p.X-f.startPointer.X, 0, viewport.Width-f.startRect.Width)
	y := geom.Clamp(f.startRect.Y+p.Y-f.startPointer.Y, 0, viewport.Height-f.startRect.Height)
	f.pos.Update(f.typ, Patch{X: &x, Y: &y})
}

// EndDrag ends a drag gesture. No snapping, no inertia.
func (f *Frame) EndDrag() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == modeDragging {
		f.mode = modeIdle
	}
}

// StartResize begins a resize gesture on the given edge. Refused while a
// drag or another resize is active.
func (f *Frame) StartResize(edge Edge, p geom.Point) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != modeIdle || f.closing {
		return false
	}
	st, ok := f.reg.State(f.typ)
	if !ok || st.Maximized {
		return false
	}
	rect, ok := f.pos.Get(f.typ)
	if !ok {
		rect = DefaultRect(f.typ, f.reg.Viewport(), 0)
	}
	if err := f.reg.Focus(f.typ); err != nil {
		return false
	}
	f.mode = modeResizing
	f.edge = edge
	f.startPointer = p
	f.startRect = rect
	return true
}

// Resize applies pointer movement to a resize in progress. East and south
// edges grow the window; west and north shrink it from the moving edge so
// the opposite edge stays fixed. Corners compose both rules.
func (f *Frame) Resize(p geom.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != modeResizing {
		return
	}

	dx := p.X - f.startPointer.X
	dy := p.Y - f.startPointer.Y
	min := MinSize(f.typ)
	r := f.startRect

	if f.edge.E {
		r.Width = f.startRect.Width + dx
		if r.Width < min.Width {
			r.Width = min.Width
		}
	}
	if f.edge.S {
		r.Height = f.startRect.Height + dy
		if r.Height < min.Height {
			r.Height = min.Height
		}
	}
	if f.edge.W {
		w := f.startRect.Width - dx
		if w < min.Width {
			w = min.Width
		}
		// The x coordinate moves by the width change so the right edge
		// stays fixed.
		r.X = f.startRect.X + (f.startRect.Width - w)
		r.Width = w
	}
	if f.edge.N {
		h := f.startRect.Height - dy
		if h < min.Height {
			h = min.Height
		}
		r.Y = f.startRect.Y + (f.startRect.Height - h)
		r.Height = h
	}

	r = geom.ClampRect(r, f.reg.Viewport())
	f.pos.Update(f.typ, Patch{X: &r.X, Y: &r.Y, Width: &r.Width, Height: &r.Height})
}

// EndResize ends a resize gesture and clears the active edge.
func (f *Frame) EndResize() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == modeResizing {
		f.mode = modeIdle
		f.edge = Edge{}
	}
}

// Mode returns the gesture state, for snapshots.
func (f *Frame) Mode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode.String()
}

// RequestClose hides the window and defers the registry close until the exit
// transition has played. Requesting close again while the exit animation is
// running is a no-op; the deferred removal itself is idempotent.
func (f *Frame) RequestClose() {
	f.mu.Lock()
	if f.closing {
		f.mu.Unlock()
		return
	}
	f.closing = true
	f.visible = false
	f.mode = modeIdle
	f.edge = Edge{}
	d := f.exitDuration
	f.mu.Unlock()

	t := time.AfterFunc(d, f.finishClose)
	f.mu.Lock()
	f.closeTimer = t
	f.mu.Unlock()
}

// AbortClose cancels a pending deferred close, used when the window is
// reopened during the exit animation. Returns false when the close has
// already landed and the frame is spent; the caller must then replace it.
func (f *Frame) AbortClose() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removed {
		return false
	}
	if !f.closing {
		return true
	}
	if f.closeTimer != nil {
		f.closeTimer.Stop()
		f.closeTimer = nil
	}
	f.closing = false
	f.visible = true
	return true
}

// finishClose performs the actual registry close. Guarded so a double
// invocation after the frame has already been removed does nothing, and so
// a timer that lost the race against AbortClose does not close a window
// that was reopened mid-animation.
func (f *Frame) finishClose() {
	f.mu.Lock()
	if f.removed || !f.closing {
		f.mu.Unlock()
		return
	}
	f.removed = true
	fn := f.onRemoved
	f.mu.Unlock()

	if err := f.reg.Close(f.typ); err != nil {
		f.log.Warn("deferred close failed", "window", f.typ.String(), "error", err)
	}
	if fn != nil {
		fn()
	}
}

// Cancel stops any pending timers. Used on teardown so a leaked callback
// never fires into a dismantled desk.
func (f *Frame) Cancel() {
	f.mu.Lock()
	mt, ct := f.mountTimer, f.closeTimer
	f.mu.Unlock()
	if mt != nil {
		mt.Stop()
	}
	if ct != nil {
		ct.Stop()
	}
}
