package crossfilter

// BrushState is the phase of a drag gesture on one canvas.
type BrushState int

const (
	BrushIdle BrushState = iota
	BrushDragging
)

// Brush tracks a drag gesture on one canvas. Only End produces a region;
// nothing observable happens to the filter while dragging.
type Brush struct {
	extent BrushRegion
	state  BrushState
	start  Point
	cur    Point
}

// NewBrush returns an idle brush whose corners are clamped to extent.
func NewBrush(extent BrushRegion) *Brush {
	return &Brush{extent: extent}
}

func (b *Brush) State() BrushState   { return b.state }
func (b *Brush) Extent() BrushRegion { return b.extent }

// Begin starts a drag. It reports false when p is outside the extent, in
// which case the brush stays idle.
func (b *Brush) Begin(p Point) bool {
	if !b.extent.Contains(p.X, p.Y) {
		return false
	}
	b.state = BrushDragging
	b.start, b.cur = p, p
	return true
}

// Move updates the live corner of an in-progress drag.
func (b *Brush) Move(p Point) {
	if b.state != BrushDragging {
		return
	}
	b.cur = b.clamp(p)
}

// Current returns the in-progress rectangle, for overlay drawing only.
func (b *Brush) Current() (BrushRegion, bool) {
	if b.state != BrushDragging {
		return BrushRegion{}, false
	}
	return NewBrushRegion(b.start, b.cur), true
}

// End finishes the drag and returns the selected region, or nil when the
// gesture had no area (a click without drag). It returns ok=false when no
// drag was in progress.
func (b *Brush) End() (region *BrushRegion, ok bool) {
	if b.state != BrushDragging {
		return nil, false
	}
	b.state = BrushIdle
	r := NewBrushRegion(b.start, b.cur)
	if r.Empty() {
		return nil, true
	}
	return &r, true
}

// Cancel drops an in-progress drag without ending it.
func (b *Brush) Cancel() {
	b.state = BrushIdle
}

func (b *Brush) clamp(p Point) Point {
	p.X = min(max(p.X, b.extent.X0), b.extent.X1)
	p.Y = min(max(p.Y, b.extent.Y0), b.extent.Y1)
	return p
}
