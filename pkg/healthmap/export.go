package healthmap

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// BrushScatterData applies a scatterplot brush given in data units: x over
// the active attribute and y over heart disease, both inclusive.
func (a *App) BrushScatterData(xlo, xhi, ylo, yhi float64) error {
	m := a.scatter.Model()
	r := crossfilter.NewBrushRegion(
		crossfilter.Point{X: m.X.Apply(xlo), Y: m.Y.Apply(yhi)},
		crossfilter.Point{X: m.X.Apply(xhi), Y: m.Y.Apply(ylo)},
	)
	if err := a.dash.EndBrush(crossfilter.ViewScatter, &r); err != nil {
		return err
	}
	a.regions[crossfilter.ViewScatter] = r
	a.updateStatus()
	return nil
}

// Export renders the current state of every view into dir and returns the
// files written. The map is skipped while its geometry is missing.
func (a *App) Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	type output struct {
		name   string
		render func(io.Writer) error
	}
	outputs := []output{
		{"scatter.png", func(w io.Writer) error { return WriteScatterPNG(w, a.scatter.Model()) }},
		{"histogram.png", func(w io.Writer) error { return WriteHistogramPNG(w, a.histogram.Model()) }},
	}
	if a.choro.Model().Ready {
		outputs = append(outputs, output{"map.png", func(w io.Writer) error { return WriteMapPNG(w, a.choro) }})
	} else {
		log.Printf("[export] Skipping map: county shapes not loaded")
	}

	var written []string
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		var buf bytes.Buffer
		if err := o.render(&buf); err != nil {
			return written, fmt.Errorf("render %s: %w", o.name, err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, err
		}
		log.Printf("[export] Wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}

func chartColor(attr crossfilter.Attribute, alpha uint8) drawing.Color {
	c := attr.Color()
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: alpha}
}

// chartRange widens a degenerate domain so the chart has something to span.
func chartRange(lo, hi float64) *chart.ContinuousRange {
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func chartTicks(values []float64) []chart.Tick {
	if len(values) < 2 {
		return nil
	}
	ticks := make([]chart.Tick, len(values))
	for i, v := range values {
		ticks[i] = chart.Tick{Value: v, Label: formatTick(v)}
	}
	return ticks
}

// WriteScatterPNG draws the scatterplot model as a dot chart. An empty
// selection produces a blank canvas.
func WriteScatterPNG(w io.Writer, m ScatterModel) error {
	if len(m.Points) == 0 {
		return writeBlank(w, ScatterWidth, ScatterHeight)
	}
	xs := make([]float64, len(m.Points))
	ys := make([]float64, len(m.Points))
	for i, p := range m.Points {
		xs[i], ys[i] = p.Value, p.Heart
	}
	opacity := float64(PointOpacity)
	ch := chart.Chart{
		Title:      fmt.Sprintf("%s vs %s", m.Attribute.DisplayName(), crossfilter.AttrHeartDisease.DisplayName()),
		Width:      ScatterWidth,
		Height:     ScatterHeight,
		Background: chart.Style{Padding: chart.Box{Top: int(ScatterMargins.Top), Left: 20, Right: int(ScatterMargins.Right), Bottom: 20}},
		XAxis:      chart.XAxis{Name: m.Attribute.DisplayName(), Range: chartRange(m.X.D0, m.X.D1), Ticks: chartTicks(m.XTicks)},
		YAxis:      chart.YAxis{Name: crossfilter.AttrHeartDisease.DisplayName(), Range: chartRange(m.Y.D0, m.Y.D1), Ticks: chartTicks(m.YTicks)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    m.Attribute.DisplayName(),
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    PointRadius,
					DotColor:    chartColor(m.Attribute, uint8(opacity*255)),
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

// WriteHistogramPNG draws the histogram model as a bar chart. Only every
// fourth bin is labelled.
func WriteHistogramPNG(w io.Writer, m HistogramModel) error {
	if len(m.Bars) == 0 || m.MaxCount == 0 {
		return writeBlank(w, HistogramWidth, HistogramHeight)
	}
	fill := chartColor(m.Attribute, 255)
	bars := make([]chart.Value, len(m.Bars))
	for i, b := range m.Bars {
		label := ""
		if i%4 == 0 {
			label = formatTick(b.X0)
		}
		bars[i] = chart.Value{
			Value: float64(b.Count),
			Label: label,
			Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		}
	}
	bc := chart.BarChart{
		Title:      m.Attribute.DisplayName(),
		Width:      HistogramWidth,
		Height:     HistogramHeight,
		BarWidth:   12,
		BarSpacing: 2,
		Background: chart.Style{Padding: chart.Box{Top: histogramOffsetY + 10, Left: 10, Right: 10, Bottom: 10}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(m.MaxCount)}},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

// WriteMapPNG rasterizes the choropleth at its canvas size.
func WriteMapPNG(w io.Writer, v *MapView) error {
	if v.Geometry() == nil {
		return crossfilter.ErrGeometryPending
	}
	return png.Encode(w, RasterizeMap(v.Geometry(), v.Model().Fills))
}

func writeBlank(w io.Writer, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return png.Encode(w, img)
}
