package crossfilter

import (
	"fmt"
	"math"
)

// ViewID identifies a view for predicate strategy lookup and refresh order.
type ViewID int

const (
	ViewScatter ViewID = iota
	ViewHistogram
	ViewMap
)

func (v ViewID) String() string {
	switch v {
	case ViewScatter:
		return "scatterplot"
	case ViewHistogram:
		return "histogram"
	case ViewMap:
		return "map"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// Point is a position in a view's local pixel space.
type Point struct {
	X, Y float64
}

// BrushRegion is a rectangle in a view's local pixel space.
type BrushRegion struct {
	X0, Y0, X1, Y1 float64
}

// NewBrushRegion builds a region from two corners in any order.
func NewBrushRegion(a, b Point) BrushRegion {
	return BrushRegion{
		X0: math.Min(a.X, b.X), Y0: math.Min(a.Y, b.Y),
		X1: math.Max(a.X, b.X), Y1: math.Max(a.Y, b.Y),
	}
}

// Empty reports a zero-area region, which counts as a cleared brush.
func (r BrushRegion) Empty() bool {
	return !(r.X1 > r.X0) || !(r.Y1 > r.Y0)
}

// Contains is inclusive on every edge. NaN coordinates are never contained.
func (r BrushRegion) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Predicate decides whether a record survives a brush.
type Predicate func(Record) bool

// Scale maps a data value to a pixel coordinate.
type Scale interface {
	Apply(v float64) float64
}

// ScaleFunc adapts a plain function to Scale.
type ScaleFunc func(float64) float64

func (f ScaleFunc) Apply(v float64) float64 { return f(v) }

// ScatterPredicate keeps records whose (attr, heart disease) point, mapped
// through x and y, lies inside r.
func ScatterPredicate(r BrushRegion, attr Attribute, x, y Scale) Predicate {
	return func(d Record) bool {
		return r.Contains(x.Apply(d.Value(attr)), y.Apply(d.Value(AttrHeartDisease)))
	}
}

// CentroidLocator resolves a record ID to its projected centroid in map
// pixel space.
type CentroidLocator interface {
	Centroid(id string) (Point, bool)
}

// MapPredicate keeps records whose projected centroid lies inside r.
// Records without a centroid are dropped.
func MapPredicate(r BrushRegion, loc CentroidLocator) Predicate {
	return func(d Record) bool {
		c, ok := loc.Centroid(d.ID)
		return ok && r.Contains(c.X, c.Y)
	}
}

// PredicateSource turns a brush region into a predicate using the view's
// current mapping. Views register one per brushable canvas.
type PredicateSource interface {
	Predicate(r BrushRegion, attr Attribute) (Predicate, error)
}

// Filter returns the members of in that satisfy p, in their original order.
func Filter(in FilteredSet, p Predicate) FilteredSet {
	out := make([]Record, 0, len(in.records))
	for _, r := range in.records {
		if p(r) {
			out = append(out, r)
		}
	}
	return FilteredSet{records: out}
}

// SelectionEngine applies brush-end events to the store.
type SelectionEngine struct {
	store   *Store
	sources map[ViewID]PredicateSource
}

func NewSelectionEngine(store *Store) *SelectionEngine {
	return &SelectionEngine{store: store, sources: make(map[ViewID]PredicateSource)}
}

// Register installs the predicate strategy for a brushable view.
func (e *SelectionEngine) Register(view ViewID, src PredicateSource) {
	e.sources[view] = src
}

// Apply handles a brush-end on view. A nil or zero-area region clears all
// filtering. Otherwise the view's predicate narrows the current FilteredSet.
// On error the store is left unchanged.
func (e *SelectionEngine) Apply(view ViewID, region *BrushRegion, attr Attribute) (FilteredSet, error) {
	if region == nil || region.Empty() {
		e.store.ResetFiltered()
		return e.store.Filtered(), nil
	}
	src, ok := e.sources[view]
	if !ok {
		return e.store.Filtered(), fmt.Errorf("no brush registered for %s", view)
	}
	p, err := src.Predicate(*region, attr)
	if err != nil {
		return e.store.Filtered(), fmt.Errorf("%s brush: %w", view, err)
	}
	next := Filter(e.store.Filtered(), p)
	e.store.SetFiltered(next)
	return next, nil
}
