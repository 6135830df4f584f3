package wm

import (
	"testing"
	"time"

	"github.com/lofideck/lofideck/internal/geom"
)

func newTestFrame(t *testing.T, typ WindowType, rect geom.Rect) (*Frame, *Registry, *PositionStore) {
	t.Helper()
	pos := NewPositionStore(nil, 0, nil)
	reg := NewRegistry(pos, geom.Size{Width: 1920, Height: 1080}, nil, nil)
	if err := reg.Open(typ, &rect); err != nil {
		t.Fatalf("open: %v", err)
	}
	return NewFrame(typ, reg, pos, nil), reg, pos
}

func TestDrag_ClampsToViewport(t *testing.T) {
	typ := Fixed(KindNotes)
	f, _, pos := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 400, Height: 500})

	if !f.StartDrag(geom.Point{X: 150, Y: 150}) {
		t.Fatal("drag did not start")
	}
	f.Drag(geom.Point{X: 150 + 100000, Y: 150 + 100000})
	f.EndDrag()

	rect, _ := pos.Get(typ)
	if rect.X != 1520 || rect.Y != 580 {
		t.Fatalf("expected clamped position (1520,580), got (%d,%d)", rect.X, rect.Y)
	}
}

func TestDrag_NegativeDeltaClampsToOrigin(t *testing.T) {
	typ := Fixed(KindNotes)
	f, _, pos := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 400, Height: 500})

	if !f.StartDrag(geom.Point{X: 150, Y: 150}) {
		t.Fatal("drag did not start")
	}
	f.Drag(geom.Point{X: -5000, Y: -5000})

	rect, _ := pos.Get(typ)
	if rect.X != 0 || rect.Y != 0 {
		t.Fatalf("expected (0,0), got (%d,%d)", rect.X, rect.Y)
	}
}

func TestDrag_FocusesWindow(t *testing.T) {
	typ := Fixed(KindNotes)
	f, reg, _ := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 400, Height: 500})

	if err := reg.Open(Fixed(KindTasks), nil); err != nil {
		t.Fatalf("open tasks: %v", err)
	}
	if !f.StartDrag(geom.Point{X: 150, Y: 150}) {
		t.Fatal("drag did not start")
	}
	st, _ := reg.State(typ)
	if st.Z != reg.MaxZ() {
		t.Fatalf("drag-start did not raise window: z=%d max=%d", st.Z, reg.MaxZ())
	}
}

func TestDrag_RefusedWhileMaximized(t *testing.T) {
	typ := Fixed(KindNotes)
	f, reg, _ := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 400, Height: 500})

	if err := reg.ToggleMaximize(typ); err != nil {
		t.Fatalf("maximize: %v", err)
	}
	if f.StartDrag(geom.Point{X: 150, Y: 150}) {
		t.Fatal("drag started on maximized window")
	}
}

func TestResize_WestEdgePreservesRightEdge(t *testing.T) {
	typ := Fixed(KindNotes)
	f, _, pos := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200})

	edge, err := ParseEdge("w")
	if err != nil {
		t.Fatalf("parse edge: %v", err)
	}
	if !f.StartResize(edge, geom.Point{X: 100, Y: 150}) {
		t.Fatal("resize did not start")
	}
	f.Resize(geom.Point{X: 50, Y: 150}) // deltaX = -50, dragging left

	rect, _ := pos.Get(typ)
	if rect.X != 50 || rect.Width != 350 {
		t.Fatalf("expected x=50 width=350, got x=%d width=%d", rect.X, rect.Width)
	}
	if rect.Right() != 400 {
		t.Fatalf("right edge moved: %d", rect.Right())
	}
	if rect.Y != 100 || rect.Height != 200 {
		t.Fatalf("unrelated axis changed: %+v", rect)
	}
}

func TestResize_NorthEdgePreservesBottomEdge(t *testing.T) {
	typ := Fixed(KindNotes)
	f, _, pos := newTestFrame(t, typ, geom.Rect{X: 100, Y: 300, Width: 300, Height: 200})

	edge, _ := ParseEdge("n")
	if !f.StartResize(edge, geom.Point{X: 200, Y: 300}) {
		t.Fatal("resize did not start")
	}
	f.Resize(geom.Point{X: 200, Y: 260}) // deltaY = -40, dragging up

	rect, _ := pos.Get(typ)
	if rect.Y != 260 || rect.Height != 240 {
		t.Fatalf("expected y=260 height=240, got y=%d height=%d", rect.Y, rect.Height)
	}
	if rect.Bottom() != 500 {
		t.Fatalf("bottom edge moved: %d", rect.Bottom())
	}
}

func TestResize_CornerComposesBothEdges(t *testing.T) {
	typ := Fixed(KindNotes)
	f, _, pos := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 300, Height: 300})

	edge, _ := ParseEdge("se")
	if !f.StartResize(edge, geom.Point{X: 400, Y: 400}) {
		t.Fatal("resize did not start")
	}
	f.Resize(geom.Point{X: 450, Y: 430})

	rect, _ := pos.Get(typ)
	if rect.Width != 350 || rect.Height != 330 {
		t.Fatalf("expected 350x330, got %dx%d", rect.Width, rect.Height)
	}
	if rect.X != 100 || rect.Y != 100 {
		t.Fatalf("origin moved on se resize: %+v", rect)
	}
}

func TestResize_FloorsAtTypeSpecificMinimum(t *testing.T) {
	typ := Fixed(KindCalendar)
	f, _, pos := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 420, Height: 480})

	edge, _ := ParseEdge("s")
	if !f.StartResize(edge, geom.Point{X: 200, Y: 580}) {
		t.Fatal("resize did not start")
	}
	f.Resize(geom.Point{X: 200, Y: 100}) // shrink far past the floor

	rect, _ := pos.Get(typ)
	if rect.Height != minHeightCalendar {
		t.Fatalf("expected calendar floor %d, got %d", minHeightCalendar, rect.Height)
	}
}

func TestGestures_MutuallyExclusive(t *testing.T) {
	typ := Fixed(KindNotes)
	f, _, _ := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200})

	if !f.StartDrag(geom.Point{X: 150, Y: 110}) {
		t.Fatal("drag did not start")
	}
	edge, _ := ParseEdge("se")
	if f.StartResize(edge, geom.Point{X: 400, Y: 300}) {
		t.Fatal("resize started while dragging")
	}
	f.EndDrag()

	if !f.StartResize(edge, geom.Point{X: 400, Y: 300}) {
		t.Fatal("resize did not start after drag ended")
	}
	if f.StartDrag(geom.Point{X: 150, Y: 110}) {
		t.Fatal("drag started while resizing")
	}
	f.EndResize()
}

func TestRequestClose_DeferredAndIdempotent(t *testing.T) {
	typ := Fixed(KindNotes)
	f, reg, _ := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200})
	f.SetAnimationTimings(0, 10*time.Millisecond)

	f.RequestClose()
	if f.Visible() {
		t.Fatal("window still visible after close request")
	}
	st, _ := reg.State(typ)
	if !st.Open {
		t.Fatal("registry close was not deferred")
	}

	// Second request during the exit window must not re-enter removal.
	f.RequestClose()

	time.Sleep(50 * time.Millisecond)
	st, _ = reg.State(typ)
	if st.Open {
		t.Fatal("window never left the open set")
	}

	// Invoking the deferred callback again after removal must be a no-op.
	f.finishClose()
	st, _ = reg.State(typ)
	if st.Open {
		t.Fatal("double finishClose reopened window")
	}
}

func TestMount_FlipsVisibleAfterDelay(t *testing.T) {
	typ := Fixed(KindNotes)
	f, _, _ := newTestFrame(t, typ, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200})
	f.SetAnimationTimings(5*time.Millisecond, 10*time.Millisecond)

	if f.Visible() {
		t.Fatal("frame visible before mount")
	}
	f.Mount()
	time.Sleep(30 * time.Millisecond)
	if !f.Visible() {
		t.Fatal("frame not visible after mount delay")
	}
}
