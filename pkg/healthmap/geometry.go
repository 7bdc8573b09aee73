package healthmap

import (
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/sudorandom/health-explorer/pkg/crossfilter"
	"github.com/sudorandom/health-explorer/pkg/sources"
	"github.com/sudorandom/health-explorer/pkg/utils"
)

// CountyShape is a county's boundary projected into map pixel space.
type CountyShape struct {
	ID          string
	Name        string
	Polygons    [][][]crossfilter.Point
	Centroid    crossfilter.Point
	HasCentroid bool
	MinX, MinY  float64
	MaxX, MaxY  float64
}

// Geometry is the projected county layer for one canvas size. It resolves
// record IDs to centroids for the map brush.
type Geometry struct {
	Width, Height int
	Projection    AlbersUSA
	Shapes        []CountyShape

	byID map[string]int
}

// ProjectCounties fits an Albers USA projection to the counties and
// projects every ring. Vertices the projection cannot place are dropped.
func ProjectCounties(counties []sources.County, width, height int) *Geometry {
	var all [][][][]float64
	for _, c := range counties {
		all = append(all, c.Polygons...)
	}
	proj := FitAlbersUSA(all, float64(width), float64(height))

	g := &Geometry{Width: width, Height: height, Projection: proj}
	for _, c := range counties {
		shape := CountyShape{ID: c.ID, Name: c.Name}
		for _, poly := range c.Polygons {
			var rings [][]crossfilter.Point
			for _, ring := range poly {
				pr := make([]crossfilter.Point, 0, len(ring))
				for _, pt := range ring {
					if len(pt) < 2 {
						continue
					}
					if x, y, ok := proj.Project(pt[0], pt[1]); ok {
						pr = append(pr, crossfilter.Point{X: x, Y: y})
					}
				}
				if len(pr) >= 3 {
					rings = append(rings, pr)
				}
			}
			if len(rings) > 0 {
				shape.Polygons = append(shape.Polygons, rings)
			}
		}
		if len(shape.Polygons) == 0 {
			continue
		}
		shape.Centroid, shape.HasCentroid = planarCentroid(shape.Polygons)
		shape.MinX, shape.MinY, shape.MaxX, shape.MaxY = bounds(shape.Polygons)
		g.Shapes = append(g.Shapes, shape)
	}
	g.index()
	return g
}

func (g *Geometry) index() {
	g.byID = make(map[string]int, len(g.Shapes))
	for i, s := range g.Shapes {
		g.byID[s.ID] = i
	}
}

// Centroid implements crossfilter.CentroidLocator.
func (g *Geometry) Centroid(id string) (crossfilter.Point, bool) {
	i, ok := g.byID[id]
	if !ok || !g.Shapes[i].HasCentroid {
		return crossfilter.Point{}, false
	}
	return g.Shapes[i].Centroid, true
}

// Shape returns the projected county with the given ID.
func (g *Geometry) Shape(id string) (*CountyShape, bool) {
	i, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return &g.Shapes[i], true
}

// CountyAt returns the county under p, if any.
func (g *Geometry) CountyAt(p crossfilter.Point) (*CountyShape, bool) {
	for i := range g.Shapes {
		s := &g.Shapes[i]
		if p.X < s.MinX || p.X > s.MaxX || p.Y < s.MinY || p.Y > s.MaxY {
			continue
		}
		inside := false
		for _, poly := range s.Polygons {
			for _, ring := range poly {
				if pointInRing(p, ring) {
					inside = !inside
				}
			}
		}
		if inside {
			return s, true
		}
	}
	return nil, false
}

func pointInRing(p crossfilter.Point, ring []crossfilter.Point) bool {
	in := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// planarCentroid is the area-weighted centroid of the projected shape, the
// same point a path centroid gives for a filled polygon.
func planarCentroid(polygons [][][]crossfilter.Point) (crossfilter.Point, bool) {
	mp := make(orb.MultiPolygon, 0, len(polygons))
	for _, poly := range polygons {
		op := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			or := make(orb.Ring, 0, len(ring)+1)
			for _, pt := range ring {
				or = append(or, orb.Point{pt.X, pt.Y})
			}
			if !or.Closed() {
				or = append(or, or[0])
			}
			op = append(op, or)
		}
		mp = append(mp, op)
	}
	c, _ := planar.CentroidArea(mp)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return crossfilter.Point{}, false
	}
	return crossfilter.Point{X: c[0], Y: c[1]}, true
}

func bounds(polygons [][][]crossfilter.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, poly := range polygons {
		for _, ring := range poly {
			for _, p := range ring {
				minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
				maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
			}
		}
	}
	return minX, minY, maxX, maxY
}

// GeometryCache keeps projected county layers between runs, keyed by the
// shape source and canvas size. Each county is stored as its own entry under
// the layer prefix.
type GeometryCache struct {
	store *utils.DiskCache
}

func NewGeometryCache(store *utils.DiskCache) *GeometryCache {
	return &GeometryCache{store: store}
}

type geometryMeta struct {
	Width, Height int
	Projection    AlbersUSA
	Count         int
}

func geometryKey(location string, width, height int) string {
	return fmt.Sprintf("geometry|v1|%dx%d|%s|", width, height, location)
}

// Load returns the projected layer for location, projecting and storing it
// on a cache miss. A nil cache always projects.
func (c *GeometryCache) Load(location, cacheDir string, width, height int) (*Geometry, error) {
	prefix := geometryKey(location, width, height)
	if c != nil && c.store != nil {
		g, err := c.read(prefix)
		switch {
		case err != nil:
			log.Printf("[geo] cache read failed: %v", err)
		case g != nil:
			log.Printf("[geo] Using cached geometry for %s (%d counties)", location, len(g.Shapes))
			return g, nil
		}
	}

	counties, err := sources.LoadCounties(location, cacheDir)
	if err != nil {
		return nil, err
	}
	g := ProjectCounties(counties, width, height)
	log.Printf("[geo] Projected %d counties into %dx%d", len(g.Shapes), width, height)

	if c != nil && c.store != nil {
		if err := c.write(prefix, g); err != nil {
			log.Printf("[geo] cache write failed: %v", err)
		}
	}
	return g, nil
}

// read returns nil without error when the layer is absent or incomplete.
func (c *GeometryCache) read(prefix string) (*Geometry, error) {
	data, err := c.store.Get(prefix + "meta")
	if err != nil || data == nil {
		return nil, err
	}
	var meta geometryMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	g := &Geometry{Width: meta.Width, Height: meta.Height, Projection: meta.Projection}
	err = c.store.ForEachPrefix(prefix+"shape|", func(_, v []byte) error {
		var s CountyShape
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		g.Shapes = append(g.Shapes, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(g.Shapes) != meta.Count {
		return nil, nil
	}
	g.index()
	return g, nil
}

func (c *GeometryCache) write(prefix string, g *Geometry) error {
	entries := make(map[string][]byte, len(g.Shapes)+1)
	for i, s := range g.Shapes {
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		entries[fmt.Sprintf("%sshape|%06d", prefix, i)] = data
	}
	meta, err := json.Marshal(geometryMeta{Width: g.Width, Height: g.Height, Projection: g.Projection, Count: len(g.Shapes)})
	if err != nil {
		return err
	}
	// meta last, so a partial write reads as a miss
	if err := c.store.BatchSet(entries); err != nil {
		return err
	}
	return c.store.Set(prefix+"meta", meta)
}
