package healthmap

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sudorandom/health-explorer/pkg/crossfilter"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 840
)

// Panel places a view's canvas on screen.
type Panel struct {
	View  crossfilter.ViewID
	Title string
	X, Y  float64
	W, H  float64
}

// Local converts a screen position to canvas coordinates. It reports false
// when p is outside the panel.
func (p Panel) Local(x, y float64) (crossfilter.Point, bool) {
	lp := crossfilter.Point{X: x - p.X, Y: y - p.Y}
	return lp, lp.X >= 0 && lp.Y >= 0 && lp.X <= p.W && lp.Y <= p.H
}

var (
	scatterPanel   = Panel{View: crossfilter.ViewScatter, Title: "SCATTERPLOT", X: 20, Y: 80, W: ScatterWidth, H: ScatterHeight}
	mapPanel       = Panel{View: crossfilter.ViewMap, Title: "COUNTY MAP", X: 660, Y: 80, W: MapWidth, H: MapHeight}
	histogramPanel = Panel{View: crossfilter.ViewHistogram, Title: "DISTRIBUTION", X: 20, Y: 510, W: HistogramWidth, H: HistogramHeight}
)

const (
	buttonX, buttonY = 20.0, 24.0
	buttonW, buttonH = 190.0, 34.0
	buttonGap        = 12.0
)

var attributeKeys = [crossfilter.NumAttributes]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
}

// Options configures an App.
type Options struct {
	CaptureDir string
}

type geometryResult struct {
	geometry *Geometry
	err      error
}

// App is the ebiten game that drives the dashboard. Every input event is
// handled to completion inside Update.
type App struct {
	Width, Height int
	CaptureDir    string

	dash      *crossfilter.Dashboard
	scatter   *ScatterView
	histogram *HistogramView
	choro     *MapView

	brushes map[crossfilter.ViewID]*crossfilter.Brush
	regions map[crossfilter.ViewID]crossfilter.BrushRegion
	active  *Panel

	geometryCh  chan geometryResult
	geometryErr error

	mapImage   *ebiten.Image
	mapVersion int

	fontSource *text.GoTextFaceSource
	boldSource *text.GoTextFaceSource

	status  string
	tooltip string
	cursor  crossfilter.Point

	captureNext bool
}

// NewApp loads records into a fresh dashboard and attaches the three views
// in their refresh order.
func NewApp(records []crossfilter.Record, opts Options) (*App, error) {
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	b, _ := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))

	a := &App{
		Width:      ScreenWidth,
		Height:     ScreenHeight,
		CaptureDir: opts.CaptureDir,
		dash:       crossfilter.NewDashboard(),
		scatter:    NewScatterView(),
		histogram:  NewHistogramView(),
		choro:      NewMapView(),
		regions:    make(map[crossfilter.ViewID]crossfilter.BrushRegion),
		geometryCh: make(chan geometryResult, 1),
		fontSource: s,
		boldSource: b,
	}
	a.brushes = map[crossfilter.ViewID]*crossfilter.Brush{
		crossfilter.ViewScatter: crossfilter.NewBrush(a.scatter.BrushExtent()),
		crossfilter.ViewMap:     crossfilter.NewBrush(a.choro.BrushExtent()),
	}

	ds, err := a.dash.Load(records)
	if err != nil {
		return nil, err
	}
	a.dash.AddView(crossfilter.ViewScatter, a.scatter)
	a.dash.AddView(crossfilter.ViewHistogram, a.histogram)
	a.dash.AddView(crossfilter.ViewMap, a.choro)
	a.refresh()
	log.Printf("Loaded %d counties", ds.Len())
	return a, nil
}

func (a *App) Dashboard() *crossfilter.Dashboard { return a.dash }
func (a *App) Scatter() *ScatterView             { return a.scatter }
func (a *App) Histogram() *HistogramView         { return a.histogram }
func (a *App) Map() *MapView                     { return a.choro }

// LoadGeometryAsync loads and projects the county layer off the update
// loop. The result is picked up by the next Update.
func (a *App) LoadGeometryAsync(cache *GeometryCache, location, cacheDir string) {
	go func() {
		g, err := cache.Load(location, cacheDir, MapWidth, MapHeight)
		a.geometryCh <- geometryResult{geometry: g, err: err}
	}()
}

func (a *App) pollGeometry() {
	select {
	case res := <-a.geometryCh:
		if res.err != nil {
			a.geometryErr = res.err
			log.Printf("[geo] Failed to load county shapes: %v", res.err)
			return
		}
		a.SetGeometry(res.geometry)
	default:
	}
}

// SetGeometry installs a loaded county layer and refreshes every view.
func (a *App) SetGeometry(g *Geometry) {
	a.choro.SetGeometry(g)
	a.refresh()
}

func (a *App) Update() error {
	a.pollGeometry()

	for i, key := range attributeKeys {
		if inpututil.IsKeyJustPressed(key) {
			a.selectAttribute(crossfilter.Attributes[i])
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.clearFilter()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.captureNext = true
	}

	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		a.handlePress(x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		a.handleRelease(x, y)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		a.handleDrag(x, y)
	}
	a.updateTooltip(x, y)
	return nil
}

func (a *App) Layout(w, h int) (int, int) { return a.Width, a.Height }

func buttonRect(i int) (x, y, w, h float64) {
	return buttonX + float64(i)*(buttonW+buttonGap), buttonY, buttonW, buttonH
}

func (a *App) buttonAt(x, y float64) (crossfilter.Attribute, bool) {
	for i, attr := range crossfilter.Attributes {
		bx, by, bw, bh := buttonRect(i)
		if x >= bx && x <= bx+bw && y >= by && y <= by+bh {
			return attr, true
		}
	}
	return "", false
}

func (a *App) brushPanels() []*Panel {
	return []*Panel{&scatterPanel, &mapPanel}
}

func (a *App) handlePress(x, y float64) {
	if attr, ok := a.buttonAt(x, y); ok {
		a.selectAttribute(attr)
		return
	}
	for _, p := range a.brushPanels() {
		lp, ok := p.Local(x, y)
		if !ok {
			continue
		}
		if a.brushes[p.View].Begin(lp) {
			a.active = p
		}
		return
	}
}

func (a *App) handleDrag(x, y float64) {
	if a.active == nil {
		return
	}
	lp, _ := a.active.Local(x, y)
	a.brushes[a.active.View].Move(lp)
}

func (a *App) handleRelease(x, y float64) {
	if a.active == nil {
		return
	}
	p := a.active
	a.active = nil

	brush := a.brushes[p.View]
	lp, _ := p.Local(x, y)
	brush.Move(lp)
	region, ok := brush.End()
	if !ok {
		return
	}

	err := a.dash.EndBrush(p.View, region)
	switch {
	case errors.Is(err, crossfilter.ErrGeometryPending):
		a.status = "County shapes are still loading"
		return
	case err != nil:
		log.Printf("[%s] %v", p.View, err)
		a.updateStatus()
		return
	}

	if region == nil {
		clear(a.regions)
	} else {
		a.regions[p.View] = *region
	}
	a.updateStatus()
}

func (a *App) selectAttribute(attr crossfilter.Attribute) {
	a.cancelBrushes()
	if err := a.dash.SetAttribute(attr); err != nil {
		log.Printf("Failed to select %q: %v", attr, err)
	}
	a.updateStatus()
}

func (a *App) clearFilter() {
	a.cancelBrushes()
	if err := a.dash.ClearBrush(crossfilter.ViewScatter); err != nil {
		log.Printf("Failed to clear filter: %v", err)
	}
	a.updateStatus()
}

func (a *App) cancelBrushes() {
	for _, b := range a.brushes {
		b.Cancel()
	}
	a.active = nil
	clear(a.regions)
}

func (a *App) refresh() {
	if err := a.dash.Refresh(); err != nil {
		log.Printf("Refresh failed: %v", err)
	}
	a.updateStatus()
}

func (a *App) updateStatus() {
	snap := a.dash.Snapshot()
	a.status = fmt.Sprintf("%s: showing %d of %d counties", snap.Attribute.DisplayName(), snap.Filtered.Len(), snap.Dataset.Len())
}

func (a *App) Status() string { return a.status }

func (a *App) updateTooltip(x, y float64) {
	a.cursor = crossfilter.Point{X: x, Y: y}
	a.tooltip = a.tooltipAt(x, y)
}

func (a *App) tooltipAt(x, y float64) string {
	if a.active != nil {
		return ""
	}
	if lp, ok := scatterPanel.Local(x, y); ok {
		if pt, ok := a.scatter.PointAt(lp); ok {
			return a.scatter.Tooltip(pt)
		}
		return ""
	}
	if lp, ok := histogramPanel.Local(x, y); ok {
		if bar, ok := a.histogram.BarAt(lp); ok {
			return a.histogram.Tooltip(bar)
		}
		return ""
	}
	if lp, ok := mapPanel.Local(x, y); ok {
		if tip, ok := a.choro.Tooltip(lp); ok {
			return tip
		}
	}
	return ""
}
