package wm

import "github.com/lofideck/lofideck/internal/geom"

// Generic size floors for resize. Calendar and timer windows hold content
// that degrades below a taller minimum.
const (
	MinWidth  = 240
	MinHeight = 180

	minHeightCalendar = 320
	minHeightTimer    = 260

	// cascadeStep offsets each newly-created widget window from the last
	// so stacked widgets stay individually grabbable.
	cascadeStep = 32
)

var defaultSizes = map[Kind]geom.Size{
	KindTasks:    {Width: 340, Height: 440},
	KindNotes:    {Width: 380, Height: 460},
	KindTimer:    {Width: 320, Height: 380},
	KindCalendar: {Width: 420, Height: 480},
	KindSettings: {Width: 400, Height: 440},
	KindPlaylist: {Width: 360, Height: 500},
	KindLinks:    {Width: 320, Height: 400},
	KindWidgets:  {Width: 360, Height: 300},
}

var defaultWidgetSize = geom.Size{Width: 480, Height: 360}

// DefaultSize returns the configured default size for a window type.
func DefaultSize(t WindowType) geom.Size {
	if t.IsWidget() {
		return defaultWidgetSize
	}
	if s, ok := defaultSizes[t.Kind]; ok {
		return s
	}
	return geom.Size{Width: MinWidth, Height: MinHeight}
}

// MinSize returns the resize floor for a window type.
func MinSize(t WindowType) geom.Size {
	s := geom.Size{Width: MinWidth, Height: MinHeight}
	switch t.Kind {
	case KindCalendar:
		s.Height = minHeightCalendar
	case KindTimer:
		s.Height = minHeightTimer
	}
	return s
}

// DefaultRect computes the initial geometry for a window that has never been
// positioned. Fixed kinds open near the viewport center staggered by kind;
// widget windows cascade by widgetIndex (the count of widget windows already
// registered), clamped to the viewport.
func DefaultRect(t WindowType, viewport geom.Size, widgetIndex int) geom.Rect {
	size := DefaultSize(t)
	r := geom.Rect{Width: size.Width, Height: size.Height}

	if t.IsWidget() {
		r.X = 80 + widgetIndex*cascadeStep
		r.Y = 80 + widgetIndex*cascadeStep
		return geom.ClampOrigin(r, viewport)
	}

	r.X = (viewport.Width - size.Width) / 2
	r.Y = (viewport.Height - size.Height) / 2

	// Stagger fixed kinds so opening several at once does not produce an
	// exact stack.
	for i, k := range FixedKinds {
		if k == t.Kind {
			r.X += (i - len(FixedKinds)/2) * cascadeStep
			r.Y += (i - len(FixedKinds)/2) * (cascadeStep / 2)
			break
		}
	}

	return geom.ClampOrigin(r, viewport)
}
