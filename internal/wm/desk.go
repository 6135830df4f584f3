package wm

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lofideck/lofideck/internal/geom"
)

// Desk coordinates the registry, position store, and per-window frames. It
// is the single entry point the control surfaces (HTTP, MCP) talk to.
type Desk struct {
	mu     sync.Mutex
	log    *slog.Logger
	reg    *Registry
	pos    *PositionStore
	frames map[WindowType]*Frame

	mountDelay   time.Duration
	exitDuration time.Duration
}

// FrameInfo extends WindowInfo with interaction state.
type FrameInfo struct {
	WindowInfo
	Visible bool   `json:"visible"`
	Gesture string `json:"gesture"`
}

// NewDesk wires a desk around an existing registry and position store.
func NewDesk(reg *Registry, pos *PositionStore, log *slog.Logger) *Desk {
	if log == nil {
		log = slog.Default()
	}
	d := &Desk{
		log:          log,
		reg:          reg,
		pos:          pos,
		frames:       make(map[WindowType]*Frame),
		mountDelay:   DefaultMountDelay,
		exitDuration: DefaultExitDuration,
	}
	// Frames for windows restored open from a previous session.
	for _, info := range reg.Snapshot() {
		if t, err := ParseType(info.Type); err == nil {
			d.frameLocked(t)
		}
	}
	return d
}

// SetAnimationTimings overrides animation timings for frames created from
// now on, and for existing frames.
func (d *Desk) SetAnimationTimings(mount, exit time.Duration) {
	d.mu.Lock()
	d.mountDelay = mount
	d.exitDuration = exit
	for _, f := range d.frames {
		f.SetAnimationTimings(mount, exit)
	}
	d.mu.Unlock()
}

// Registry exposes the underlying registry.
func (d *Desk) Registry() *Registry { return d.reg }

// Positions exposes the underlying position store.
func (d *Desk) Positions() *PositionStore { return d.pos }

// frameLocked returns the frame for a type, creating and mounting it on
// first use. Caller holds d.mu.
func (d *Desk) frameLocked(t WindowType) *Frame {
	f, ok := d.frames[t]
	if !ok {
		f = NewFrame(t, d.reg, d.pos, d.log)
		f.SetAnimationTimings(d.mountDelay, d.exitDuration)
		f.OnRemoved(func() {
			d.mu.Lock()
			if d.frames[t] == f {
				delete(d.frames, t)
			}
			d.mu.Unlock()
		})
		d.frames[t] = f
		f.Mount()
	}
	return f
}

func (d *Desk) frame(t WindowType) (*Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.frames[t]
	return f, ok
}

// Open opens a window and creates its frame. Opening a window whose exit
// animation is still running aborts the pending close instead of letting
// the stale timer take the reopened window down.
func (d *Desk) Open(t WindowType, pos *geom.Rect) error {
	d.mu.Lock()
	if f, ok := d.frames[t]; ok {
		if !f.AbortClose() {
			// The deferred close already landed; the frame is spent.
			delete(d.frames, t)
		}
	}
	d.mu.Unlock()

	if err := d.reg.Open(t, pos); err != nil {
		return err
	}
	d.mu.Lock()
	d.frameLocked(t)
	d.mu.Unlock()
	return nil
}

// Close requests an animated close. The window leaves the registry's open
// set only after the exit transition has elapsed; until then the frame
// stays mapped so a reopen can abort the close. Closing again during the
// exit window is a no-op.
func (d *Desk) Close(t WindowType) error {
	st, ok := d.reg.State(t)
	if !ok {
		if t.IsWidget() {
			return nil
		}
		return fmt.Errorf("unknown window kind %q", t.Kind)
	}
	if !st.Open {
		return nil
	}
	d.mu.Lock()
	f := d.frameLocked(t)
	d.mu.Unlock()
	f.RequestClose()
	return nil
}

// Toggle opens the window if closed, closes (animated) if open.
func (d *Desk) Toggle(t WindowType) error {
	st, seen := d.reg.State(t)
	if seen && st.Open {
		return d.Close(t)
	}
	return d.Open(t, nil)
}

// Focus raises a window to the top of the stack.
func (d *Desk) Focus(t WindowType) error {
	return d.reg.Focus(t)
}

// ToggleMaximize flips the maximize override.
func (d *Desk) ToggleMaximize(t WindowType) error {
	return d.reg.ToggleMaximize(t)
}

// UpdatePosition merges a partial geometry update, for direct callers that
// bypass the gesture protocol (e.g. programmatic layout).
func (d *Desk) UpdatePosition(t WindowType, p Patch) geom.Rect {
	return d.pos.Update(t, p)
}

// DragStart begins a drag gesture on an open window.
func (d *Desk) DragStart(t WindowType, p geom.Point) error {
	f, ok := d.frame(t)
	if !ok {
		return fmt.Errorf("window %q is not open", t.String())
	}
	if !f.StartDrag(p) {
		return fmt.Errorf("window %q cannot start drag", t.String())
	}
	return nil
}

// DragMove applies pointer movement to an active drag.
func (d *Desk) DragMove(t WindowType, p geom.Point) {
	if f, ok := d.frame(t); ok {
		f.Drag(p)
	}
}

// DragEnd ends an active drag.
func (d *Desk) DragEnd(t WindowType) {
	if f, ok := d.frame(t); ok {
		f.EndDrag()
	}
}

// ResizeStart begins a resize gesture on the named edge.
func (d *Desk) ResizeStart(t WindowType, edge string, p geom.Point) error {
	e, err := ParseEdge(edge)
	if err != nil {
		return err
	}
	f, ok := d.frame(t)
	if !ok {
		return fmt.Errorf("window %q is not open", t.String())
	}
	if !f.StartResize(e, p) {
		return fmt.Errorf("window %q cannot start resize", t.String())
	}
	return nil
}

// ResizeMove applies pointer movement to an active resize.
func (d *Desk) ResizeMove(t WindowType, p geom.Point) {
	if f, ok := d.frame(t); ok {
		f.Resize(p)
	}
}

// ResizeEnd ends an active resize.
func (d *Desk) ResizeEnd(t WindowType) {
	if f, ok := d.frame(t); ok {
		f.EndResize()
	}
}

// Snapshot returns all open windows back-to-front with interaction state.
func (d *Desk) Snapshot() []FrameInfo {
	infos := d.reg.Snapshot()
	out := make([]FrameInfo, 0, len(infos))
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, info := range infos {
		fi := FrameInfo{WindowInfo: info, Gesture: "idle"}
		if t, err := ParseType(info.Type); err == nil {
			if f, ok := d.frames[t]; ok {
				fi.Visible = f.Visible()
				fi.Gesture = f.Mode()
			}
		}
		out = append(out, fi)
	}
	return out
}

// Teardown cancels all pending frame timers.
func (d *Desk) Teardown() {
	d.mu.Lock()
	frames := make([]*Frame, 0, len(d.frames))
	for _, f := range d.frames {
		frames = append(frames, f)
	}
	d.mu.Unlock()
	for _, f := range frames {
		f.Cancel()
	}
}
