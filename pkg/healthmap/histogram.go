package healthmap

import (
	"fmt"
	"image/color"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
)

const (
	HistogramWidth   = 400
	HistogramHeight  = 300
	HistogramBins    = 20
	histogramOffsetX = 50
	histogramOffsetY = 30
	histogramPlotW   = HistogramWidth - 100
	histogramPlotH   = HistogramHeight - 50
)

// Bar is a drawable histogram bin in canvas pixels.
type Bar struct {
	Bin
	X, Y, W, H float64
}

// HistogramModel is everything needed to draw the histogram. An empty
// filtered set yields no bars.
type HistogramModel struct {
	Attribute crossfilter.Attribute
	Color     color.RGBA
	X, Y      LinearScale
	Bars      []Bar
	MaxCount  int
}

// HistogramView bins the filtered set on the active attribute. Unlike the
// scatterplot its domain follows the filter.
type HistogramView struct {
	model HistogramModel
}

func NewHistogramView() *HistogramView {
	return &HistogramView{}
}

func (v *HistogramView) Model() HistogramModel { return v.model }

func (v *HistogramView) Refresh(s crossfilter.Snapshot) error {
	records := s.Filtered.Records()
	lo, hi, ok := Extent(records, s.Attribute)
	m := HistogramModel{
		Attribute: s.Attribute,
		Color:     s.Attribute.Color(),
		X:         LinearScale{D0: lo, D1: hi, R0: 0, R1: histogramPlotW},
	}
	if !ok {
		m.Y = LinearScale{D0: 0, D1: 0, R0: histogramPlotH, R1: 0}
		v.model = m
		return nil
	}

	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Value(s.Attribute)
	}
	bins := BinValues(values, lo, hi, HistogramBins)
	for _, b := range bins {
		m.MaxCount = max(m.MaxCount, b.Count)
	}
	m.Y = LinearScale{D0: 0, D1: float64(m.MaxCount), R0: histogramPlotH, R1: 0}

	for _, b := range bins {
		x0, x1 := m.X.Apply(b.X0), m.X.Apply(b.X1)
		if b.X0 == b.X1 {
			// single-valued domain: one full-width bar
			x0, x1 = 0, histogramPlotW
		}
		y := m.Y.Apply(float64(b.Count))
		m.Bars = append(m.Bars, Bar{
			Bin: b,
			X:   histogramOffsetX + x0,
			Y:   histogramOffsetY + y,
			W:   max(0, x1-x0-2),
			H:   histogramPlotH - y,
		})
	}
	v.model = m
	return nil
}

// BarAt returns the bar under p.
func (v *HistogramView) BarAt(p crossfilter.Point) (Bar, bool) {
	for _, b := range v.model.Bars {
		if p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H {
			return b, true
		}
	}
	return Bar{}, false
}

func (v *HistogramView) Tooltip(b Bar) string {
	return fmt.Sprintf("Range: %.1f%% - %.1f%%\nCount: %d", b.X0, b.X1, b.Count)
}
