package healthmap

import (
	"fmt"
	"image/color"
	"math"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
)

const (
	MapWidth  = 600
	MapHeight = 400
)

// MapModel is the per-county fill for the current snapshot. Fills is
// parallel to Geometry.Shapes.
type MapModel struct {
	Ready     bool
	Attribute crossfilter.Attribute
	Scale     SequentialBlues
	Fills     []color.RGBA
	Matched   int
}

// MapView colours counties by the active attribute. Counties outside the
// filtered set keep the neutral fill.
type MapView struct {
	geometry *Geometry
	values   map[string]float64
	model    MapModel
	version  int
}

func NewMapView() *MapView {
	return &MapView{}
}

// SetGeometry installs the projected county layer. The caller refreshes
// afterwards.
func (v *MapView) SetGeometry(g *Geometry) {
	v.geometry = g
}

func (v *MapView) Geometry() *Geometry { return v.geometry }
func (v *MapView) Model() MapModel     { return v.model }

// Version increases on every refresh so the renderer knows when to redraw
// its cached raster.
func (v *MapView) Version() int { return v.version }

func (v *MapView) BrushExtent() crossfilter.BrushRegion {
	return crossfilter.BrushRegion{X0: 0, Y0: 0, X1: MapWidth, Y1: MapHeight}
}

func (v *MapView) Refresh(s crossfilter.Snapshot) error {
	v.version++
	lo, hi, _ := Extent(s.Filtered.Records(), s.Attribute)
	m := MapModel{Attribute: s.Attribute, Scale: SequentialBlues{Lo: lo, Hi: hi}}
	v.values = make(map[string]float64, s.Filtered.Len())
	for _, r := range s.Filtered.Records() {
		v.values[r.ID] = r.Value(s.Attribute)
	}
	if v.geometry == nil {
		v.model = m
		return nil
	}

	m.Ready = true
	m.Fills = make([]color.RGBA, len(v.geometry.Shapes))
	for i, shape := range v.geometry.Shapes {
		val, ok := v.values[shape.ID]
		if !ok || math.IsNaN(val) {
			m.Fills[i] = ColorNoData
			continue
		}
		m.Fills[i] = m.Scale.At(val)
		m.Matched++
	}
	v.model = m
	return nil
}

// Predicate implements crossfilter.PredicateSource. The map cannot be
// brushed until its geometry has loaded.
func (v *MapView) Predicate(r crossfilter.BrushRegion, _ crossfilter.Attribute) (crossfilter.Predicate, error) {
	if v.geometry == nil {
		return nil, crossfilter.ErrGeometryPending
	}
	return crossfilter.MapPredicate(r, v.geometry), nil
}

// Tooltip describes the county under p, if any.
func (v *MapView) Tooltip(p crossfilter.Point) (string, bool) {
	if v.geometry == nil {
		return "", false
	}
	shape, ok := v.geometry.CountyAt(p)
	if !ok {
		return "", false
	}
	name := shape.Name
	if name == "" {
		name = shape.ID
	}
	val, ok := v.values[shape.ID]
	if !ok || math.IsNaN(val) {
		return fmt.Sprintf("%s\nnot selected", name), true
	}
	return fmt.Sprintf("%s\n%s: %g", name, v.model.Attribute.DisplayName(), val), true
}
