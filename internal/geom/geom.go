package geom

// Point is a position in viewport pixel coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect represents a window position and size.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Origin returns the rect's top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rect's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Right returns the x coordinate of the rect's right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the rect's bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Clamp limits v to the inclusive range [lo, hi]. When hi < lo the lower
// bound wins, which keeps oversized windows pinned at the viewport origin.
func Clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampOrigin moves the rect's origin so the rect stays fully inside the
// viewport. Size is left untouched.
func ClampOrigin(r Rect, viewport Size) Rect {
	r.X = Clamp(r.X, 0, viewport.Width-r.Width)
	r.Y = Clamp(r.Y, 0, viewport.Height-r.Height)
	return r
}

// ClampRect clamps both origin and size so the rect never extends past the
// viewport. The origin is adjusted first, then the size is shrunk if the
// rect is still too large.
func ClampRect(r Rect, viewport Size) Rect {
	r = ClampOrigin(r, viewport)
	if r.Right() > viewport.Width {
		r.Width = viewport.Width - r.X
	}
	if r.Bottom() > viewport.Height {
		r.Height = viewport.Height - r.Y
	}
	return r
}
