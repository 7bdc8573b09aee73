package healthmap

import (
	"fmt"
	"image/color"
	"math"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
)

// Margins is the space around a plot area for axes.
type Margins struct {
	Top, Right, Bottom, Left float64
}

const (
	ScatterWidth  = 600
	ScatterHeight = 400
	PointRadius   = 5
	PointOpacity  = 0.7
)

var ScatterMargins = Margins{Top: 40, Right: 40, Bottom: 50, Left: 70}

// ScatterPoint is one plotted county.
type ScatterPoint struct {
	ID           string
	X, Y         float64
	Value, Heart float64
}

// ScatterModel is everything needed to draw the scatterplot.
type ScatterModel struct {
	Attribute      crossfilter.Attribute
	Color          color.RGBA
	X, Y           LinearScale
	XTicks, YTicks []float64
	Points         []ScatterPoint
}

// ScatterView plots the active attribute against heart disease. Its scales
// span the full dataset so that positions stay put while brushing.
type ScatterView struct {
	model ScatterModel
}

func NewScatterView() *ScatterView {
	return &ScatterView{}
}

func (v *ScatterView) Model() ScatterModel { return v.model }

// BrushExtent is the plot area inside the axes.
func (v *ScatterView) BrushExtent() crossfilter.BrushRegion {
	return crossfilter.BrushRegion{
		X0: ScatterMargins.Left, Y0: ScatterMargins.Top,
		X1: ScatterWidth - ScatterMargins.Right, Y1: ScatterHeight - ScatterMargins.Bottom,
	}
}

// Refresh rebuilds the scales from the dataset and the points from the
// filtered set.
func (v *ScatterView) Refresh(s crossfilter.Snapshot) error {
	all := s.Dataset.Records()
	xlo, xhi, _ := Extent(all, s.Attribute)
	ylo, yhi, _ := Extent(all, crossfilter.AttrHeartDisease)

	m := ScatterModel{
		Attribute: s.Attribute,
		Color:     s.Attribute.Color(),
		X:         LinearScale{D0: xlo, D1: xhi, R0: ScatterMargins.Left, R1: ScatterWidth - ScatterMargins.Right},
		Y:         LinearScale{D0: ylo, D1: yhi, R0: ScatterHeight - ScatterMargins.Bottom, R1: ScatterMargins.Top},
		XTicks:    Ticks(xlo, xhi, 10),
		YTicks:    Ticks(ylo, yhi, 10),
	}
	for _, r := range s.Filtered.Records() {
		val, heart := r.Value(s.Attribute), r.Value(crossfilter.AttrHeartDisease)
		x, y := m.X.Apply(val), m.Y.Apply(heart)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		m.Points = append(m.Points, ScatterPoint{ID: r.ID, X: x, Y: y, Value: val, Heart: heart})
	}
	v.model = m
	return nil
}

// Predicate implements crossfilter.PredicateSource using the scales of the
// last refresh.
func (v *ScatterView) Predicate(r crossfilter.BrushRegion, attr crossfilter.Attribute) (crossfilter.Predicate, error) {
	if v.model.Attribute != attr {
		return nil, fmt.Errorf("scatterplot scales are for %s, not %s", v.model.Attribute, attr)
	}
	return crossfilter.ScatterPredicate(r, attr, v.model.X, v.model.Y), nil
}

// PointAt returns the topmost point within the mark radius of p.
func (v *ScatterView) PointAt(p crossfilter.Point) (ScatterPoint, bool) {
	for i := len(v.model.Points) - 1; i >= 0; i-- {
		pt := v.model.Points[i]
		if math.Hypot(pt.X-p.X, pt.Y-p.Y) <= PointRadius {
			return pt, true
		}
	}
	return ScatterPoint{}, false
}

// Tooltip describes a hovered point.
func (v *ScatterView) Tooltip(pt ScatterPoint) string {
	return fmt.Sprintf("%s: %g\n%s: %g", v.model.Attribute.DisplayName(), pt.Value, crossfilter.AttrHeartDisease.DisplayName(), pt.Heart)
}
