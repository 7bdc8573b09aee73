package sources

import (
	"fmt"
	"io"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/health-explorer/pkg/crossfilter"
	"github.com/sudorandom/health-explorer/pkg/utils"
)

// County is one boundary shape in lng/lat. Polygons holds every polygon of
// the county as rings of [lng, lat] pairs.
type County struct {
	ID       string
	Name     string
	Polygons [][][][]float64
}

var idProperties = []string{"GEOID", "geoid", "fips", "FIPS", "id"}

// ParseCounties decodes a GeoJSON FeatureCollection of county shapes.
// Features without a usable id or polygonal geometry are skipped.
func ParseCounties(data []byte) ([]County, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crossfilter.ErrResourceLoad, err)
	}
	counties := make([]County, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		id := featureID(f)
		if id == "" {
			continue
		}
		c := County{ID: id, Name: featureName(f)}
		switch {
		case f.Geometry.IsPolygon():
			c.Polygons = [][][][]float64{f.Geometry.Polygon}
		case f.Geometry.IsMultiPolygon():
			c.Polygons = f.Geometry.MultiPolygon
		default:
			continue
		}
		counties = append(counties, c)
	}
	if len(counties) == 0 {
		return nil, fmt.Errorf("%w: no county shapes found", crossfilter.ErrResourceLoad)
	}
	return counties, nil
}

// LoadCounties opens location (a path or URL) and parses it.
func LoadCounties(location, cacheDir string) ([]County, error) {
	rc, err := utils.Open(location, cacheDir, "[geo]")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crossfilter.ErrResourceLoad, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crossfilter.ErrResourceLoad, err)
	}
	return ParseCounties(data)
}

func featureID(f *geojson.Feature) string {
	if id := idString(f.ID); id != "" {
		return id
	}
	for _, p := range idProperties {
		if id := idString(f.Properties[p]); id != "" {
			return id
		}
	}
	return ""
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return NormalizeFIPS(id)
	case float64:
		return NormalizeFIPS(strconv.FormatInt(int64(id), 10))
	case int:
		return NormalizeFIPS(strconv.Itoa(id))
	}
	return ""
}

func featureName(f *geojson.Feature) string {
	for _, p := range []string{"NAME", "name"} {
		if s, ok := f.Properties[p].(string); ok {
			return s
		}
	}
	return ""
}
