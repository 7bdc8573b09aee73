package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sudorandom/health-explorer/pkg/crossfilter"
	"github.com/sudorandom/health-explorer/pkg/healthmap"
	"github.com/sudorandom/health-explorer/pkg/sources"
	"github.com/sudorandom/health-explorer/pkg/utils"
)

// DataFlags locates the input files shared by every command.
type DataFlags struct {
	Data     string `help:"County health CSV (path or URL)." default:"${health_data}"`
	Geo      string `help:"County boundary GeoJSON (path or URL)." default:"${counties_url}"`
	CacheDir string `help:"Directory for downloaded files and projected geometry." default:"${cache_dir}" type:"path"`
}

type viewCmd struct {
	DataFlags `embed:""`

	WindowWidth  int    `help:"Initial window width." default:"1280"`
	WindowHeight int    `help:"Initial window height." default:"840"`
	TPS          int    `help:"Ticks per second (input and refresh rate)." default:"30"`
	CaptureDir   string `help:"Directory for PNG frames saved with the S key." default:"captures" type:"path"`
}

type exportCmd struct {
	DataFlags `embed:""`

	Attribute string    `help:"Attribute to plot (column key or display name)." default:"percent_inactive"`
	XRange    []float64 `help:"Scatterplot brush on the attribute axis, as lo,hi." sep:","`
	YRange    []float64 `help:"Scatterplot brush on the heart disease axis, as lo,hi." sep:","`
	Out       string    `help:"Output directory for the PNG files." default:"export" type:"path"`
}

var cli struct {
	View   viewCmd   `cmd:"" default:"withargs" help:"Open the interactive dashboard."`
	Export exportCmd `cmd:"" help:"Apply a brush headlessly and write each view as a PNG."`
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx := kong.Parse(&cli,
		kong.Name("health-explorer"),
		kong.Description("Linked scatterplot, histogram and county map of US health statistics."),
		kong.UsageOnError(),
		kong.DefaultEnvars("HEALTH_EXPLORER"),
		kong.Vars{
			"health_data":  sources.DefaultHealthData,
			"counties_url": sources.CountiesGeoJSONURL,
			"cache_dir":    utils.DefaultCacheDir,
		},
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func loadRecords(f DataFlags) []crossfilter.Record {
	records, err := sources.LoadHealthData(f.Data, f.CacheDir)
	if err != nil {
		log.Fatalf("Failed to load health data: %v", err)
	}
	return records
}

// openGeometryCache opens the badger store for projected shapes. Failures are
// logged and the cache skipped.
func openGeometryCache(cacheDir string) (*healthmap.GeometryCache, func()) {
	if cacheDir == "" {
		return nil, func() {}
	}
	store, err := utils.OpenDiskCache(filepath.Join(cacheDir, "geometry.db"))
	if err != nil {
		log.Printf("[geo] Geometry cache unavailable: %v", err)
		return nil, func() {}
	}
	return healthmap.NewGeometryCache(store), func() {
		if err := store.Close(); err != nil {
			log.Printf("[geo] Error closing geometry cache: %v", err)
		}
	}
}

func (c *viewCmd) Run() error {
	app, err := healthmap.NewApp(loadRecords(c.DataFlags), healthmap.Options{CaptureDir: c.CaptureDir})
	if err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}

	cache, closeCache := openGeometryCache(c.CacheDir)
	defer closeCache()
	app.LoadGeometryAsync(cache, c.Geo, c.CacheDir)

	ebiten.SetTPS(c.TPS)
	ebiten.SetWindowSize(c.WindowWidth, c.WindowHeight)
	ebiten.SetWindowTitle("Health Explorer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(app)
}

func (c *exportCmd) Run() error {
	app, err := healthmap.NewApp(loadRecords(c.DataFlags), healthmap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}
	if err := app.Dashboard().SelectAttribute(c.Attribute); err != nil {
		return err
	}

	if c.Geo != "" {
		cache, closeCache := openGeometryCache(c.CacheDir)
		defer closeCache()
		g, err := cache.Load(c.Geo, c.CacheDir, healthmap.MapWidth, healthmap.MapHeight)
		if err != nil {
			log.Printf("[geo] Failed to load county shapes, skipping the map: %v", err)
		} else {
			app.SetGeometry(g)
		}
	}

	if len(c.XRange) > 0 || len(c.YRange) > 0 {
		m := app.Scatter().Model()
		xr, err := brushRange("x-range", c.XRange, m.X.D0, m.X.D1)
		if err != nil {
			return err
		}
		yr, err := brushRange("y-range", c.YRange, m.Y.D0, m.Y.D1)
		if err != nil {
			return err
		}
		if err := app.BrushScatterData(xr[0], xr[1], yr[0], yr[1]); err != nil {
			return err
		}
	}
	log.Print(app.Status())

	_, err = app.Export(c.Out)
	return err
}

// brushRange validates a lo,hi flag, defaulting to the full axis when unset.
func brushRange(name string, v []float64, lo, hi float64) ([2]float64, error) {
	switch len(v) {
	case 0:
		return [2]float64{lo, hi}, nil
	case 2:
		return [2]float64{v[0], v[1]}, nil
	default:
		return [2]float64{}, fmt.Errorf("--%s wants exactly two values, got %d", name, len(v))
	}
}
