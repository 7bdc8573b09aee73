package healthmap

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sudorandom/health-explorer/pkg/crossfilter"
)

const (
	fontSize      = 13.0
	titleFontSize = 12.0
)

var (
	colorAxis = color.RGBA{140, 148, 160, 255}
	colorText = color.RGBA{220, 224, 230, 255}
	colorDim  = color.RGBA{120, 128, 140, 255}
)

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)

	a.drawButtons(screen)
	a.drawPanel(screen, scatterPanel)
	a.drawPanel(screen, mapPanel)
	a.drawPanel(screen, histogramPanel)

	a.drawScatter(screen, scatterPanel)
	a.drawHistogram(screen, histogramPanel)
	a.drawMap(screen, mapPanel)
	a.drawBrushes(screen)
	a.drawLegend(screen)
	a.drawStatus(screen)
	a.drawTooltip(screen)

	if a.captureNext {
		a.captureNext = false
		a.captureFrame(screen)
	}
}

func (a *App) face(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: a.fontSource, Size: size}
}

func (a *App) drawText(screen *ebiten.Image, s string, x, y, size float64, c color.Color, align text.Align) {
	if a.fontSource == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	op.PrimaryAlign = align
	op.LineSpacing = size * 1.3
	text.Draw(screen, s, a.face(size), op)
}

func (a *App) drawPanel(screen *ebiten.Image, p Panel) {
	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), ColorPanel, false)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), 1, ColorOutline, false)
	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y-18), 4, 14, a.dash.Attribute().Color(), false)

	if a.boldSource != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(p.X+10, p.Y-19)
		op.ColorScale.Scale(1, 1, 1, 0.5)
		text.Draw(screen, p.Title, &text.GoTextFace{Source: a.boldSource, Size: titleFontSize}, op)
	}
}

func (a *App) drawButtons(screen *ebiten.Image) {
	active := a.dash.Attribute()
	for i, attr := range crossfilter.Attributes {
		x, y, w, h := buttonRect(i)
		bg := ColorPanel
		if attr == active {
			bg = attr.Color()
		}
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bg, false)
		vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, ColorOutline, false)

		fg := color.Color(colorText)
		if attr == active {
			fg = ColorBackground
		}
		label := fmt.Sprintf("%d  %s", i+1, attr.DisplayName())
		a.drawText(screen, label, x+w/2, y+h/2-fontSize/2-1, fontSize, fg, text.AlignCenter)
	}
}

func (a *App) drawScatter(screen *ebiten.Image, p Panel) {
	m := a.scatter.Model()
	ox, oy := float32(p.X), float32(p.Y)
	left, right := ScatterMargins.Left, ScatterWidth-ScatterMargins.Right
	top, bottom := ScatterMargins.Top, ScatterHeight-ScatterMargins.Bottom

	vector.StrokeLine(screen, ox+float32(left), oy+float32(bottom), ox+float32(right), oy+float32(bottom), 1, colorAxis, false)
	vector.StrokeLine(screen, ox+float32(left), oy+float32(top), ox+float32(left), oy+float32(bottom), 1, colorAxis, false)

	for _, t := range m.XTicks {
		x := p.X + m.X.Apply(t)
		vector.StrokeLine(screen, float32(x), oy+float32(bottom), float32(x), oy+float32(bottom)+5, 1, colorAxis, false)
		a.drawText(screen, formatTick(t), x, p.Y+bottom+8, 10, colorDim, text.AlignCenter)
	}
	for _, t := range m.YTicks {
		y := p.Y + m.Y.Apply(t)
		vector.StrokeLine(screen, ox+float32(left)-5, float32(y), ox+float32(left), float32(y), 1, colorAxis, false)
		a.drawText(screen, formatTick(t), p.X+left-8, y-6, 10, colorDim, text.AlignEnd)
	}
	a.drawText(screen, m.Attribute.DisplayName(), p.X+(left+right)/2, p.Y+ScatterHeight-20, fontSize, colorText, text.AlignCenter)
	a.drawText(screen, crossfilter.AttrHeartDisease.DisplayName(), p.X+8, p.Y+8, fontSize, colorText, text.AlignStart)

	opacity := float64(PointOpacity)
	dot := color.NRGBA{m.Color.R, m.Color.G, m.Color.B, uint8(opacity * 255)}
	for _, pt := range m.Points {
		vector.DrawFilledCircle(screen, ox+float32(pt.X), oy+float32(pt.Y), PointRadius, dot, true)
	}
}

func (a *App) drawHistogram(screen *ebiten.Image, p Panel) {
	m := a.histogram.Model()
	ox, oy := float32(p.X), float32(p.Y)
	baseY := float32(histogramOffsetY + histogramPlotH)

	vector.StrokeLine(screen, ox+histogramOffsetX, oy+baseY, ox+histogramOffsetX+histogramPlotW, oy+baseY, 1, colorAxis, false)
	vector.StrokeLine(screen, ox+histogramOffsetX, oy+histogramOffsetY, ox+histogramOffsetX, oy+baseY, 1, colorAxis, false)

	for _, b := range m.Bars {
		vector.DrawFilledRect(screen, ox+float32(b.X)+1, oy+float32(b.Y), float32(b.W), float32(b.H), m.Color, false)
	}
	if len(m.Bars) == 0 {
		a.drawText(screen, "No counties selected", p.X+p.W/2, p.Y+p.H/2, fontSize, colorDim, text.AlignCenter)
		return
	}

	for _, t := range Ticks(m.X.D0, m.X.D1, 5) {
		x := p.X + histogramOffsetX + m.X.Apply(t)
		a.drawText(screen, formatTick(t), x, p.Y+float64(baseY)+6, 10, colorDim, text.AlignCenter)
	}
	for _, t := range Ticks(0, float64(m.MaxCount), 5) {
		y := p.Y + histogramOffsetY + m.Y.Apply(t)
		a.drawText(screen, formatTick(t), p.X+histogramOffsetX-6, y-6, 10, colorDim, text.AlignEnd)
	}
	a.drawText(screen, m.Attribute.DisplayName(), p.X+histogramOffsetX+histogramPlotW/2, p.Y+p.H-16, fontSize, colorText, text.AlignCenter)
}

func (a *App) drawMap(screen *ebiten.Image, p Panel) {
	m := a.choro.Model()
	if !m.Ready {
		msg := "Loading county shapes..."
		if a.geometryErr != nil {
			msg = "County shapes unavailable"
		}
		a.drawText(screen, msg, p.X+p.W/2, p.Y+p.H/2, fontSize, colorDim, text.AlignCenter)
		return
	}

	if a.mapImage == nil || a.mapVersion != a.choro.Version() {
		rgba := RasterizeMap(a.choro.Geometry(), m.Fills)
		if a.mapImage == nil {
			a.mapImage = ebiten.NewImageFromImage(rgba)
		} else {
			a.mapImage.WritePixels(rgba.Pix)
		}
		a.mapVersion = a.choro.Version()
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(p.X, p.Y)
	screen.DrawImage(a.mapImage, op)
}

func (a *App) drawBrushes(screen *ebiten.Image) {
	for _, p := range a.brushPanels() {
		r, ok := a.brushes[p.View].Current()
		if !ok {
			r, ok = a.regions[p.View]
		}
		if !ok {
			continue
		}
		x, y := float32(p.X+r.X0), float32(p.Y+r.Y0)
		w, h := float32(r.X1-r.X0), float32(r.Y1-r.Y0)
		vector.DrawFilledRect(screen, x, y, w, h, ColorBrush, false)
		vector.StrokeRect(screen, x, y, w, h, 1, ColorBorder, false)
	}
}

// drawLegend shows the map colour ramp for the current filtered extent.
func (a *App) drawLegend(screen *ebiten.Image) {
	m := a.choro.Model()
	x, y := mapPanel.X, histogramPanel.Y
	w, h := 300.0, 12.0
	steps := 60
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		c := interpolateRamp(blues, t)
		vector.DrawFilledRect(screen, float32(x+t*(w-w/float64(steps))), float32(y), float32(w/float64(steps))+1, float32(h), c, false)
	}
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, ColorOutline, false)
	if m.Attribute == "" || math.IsNaN(m.Scale.Lo) {
		return
	}
	a.drawText(screen, formatTick(m.Scale.Lo), x, y+h+4, 10, colorDim, text.AlignStart)
	a.drawText(screen, formatTick(m.Scale.Hi), x+w, y+h+4, 10, colorDim, text.AlignEnd)
	vector.DrawFilledRect(screen, float32(x+w+20), float32(y), float32(h), float32(h), ColorNoData, false)
	a.drawText(screen, "not selected", x+w+20+h+6, y-1, 11, colorDim, text.AlignStart)
}

func (a *App) drawStatus(screen *ebiten.Image) {
	x, y := mapPanel.X, histogramPanel.Y+50
	a.drawText(screen, a.status, x, y, fontSize+2, colorText, text.AlignStart)
	help := "Drag on the scatterplot or map to filter.  Esc clears, 1-4 switch attribute, S saves a frame."
	a.drawText(screen, help, x, y+26, 11, colorDim, text.AlignStart)
}

func (a *App) drawTooltip(screen *ebiten.Image) {
	if a.tooltip == "" || a.fontSource == nil {
		return
	}
	face := a.face(12)
	w, h := text.Measure(a.tooltip, face, 12*1.3)
	x, y := a.cursor.X+14, a.cursor.Y+14
	if x+w+12 > float64(a.Width) {
		x = a.cursor.X - w - 20
	}
	if y+h+10 > float64(a.Height) {
		y = a.cursor.Y - h - 20
	}
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w+12), float32(h+10), color.RGBA{0, 0, 0, 200}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w+12), float32(h+10), 1, ColorOutline, false)
	a.drawText(screen, a.tooltip, x+6, y+5, 12, colorText, text.AlignStart)
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
