package sources

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
)

const sampleCSV = `cnty_fips,display_name,percent_inactive,percent_coronary_heart_disease,percent_high_cholesterol,percent_smoking,median_household_income
1001,"Autauga County, AL",28.1,7.1,36.2,17.4,57982
01003,"Baldwin County, AL",24.3,6.5,35.1,,61756
1005,"Barbour County, AL",n/a,9.0,38.4,22.1,34990
`

func TestParseHealthData(t *testing.T) {
	records, err := ParseHealthData(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseHealthData failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	r := records[0]
	if r.ID != "01001" || r.Name != "Autauga County, AL" {
		t.Errorf("unexpected first record: %+v", r)
	}
	if r.Value(crossfilter.AttrInactivity) != 28.1 || r.Value(crossfilter.AttrSmoking) != 17.4 {
		t.Errorf("unexpected values: %+v", r.Values)
	}
	if records[1].ID != "01003" {
		t.Errorf("padded id not preserved: %q", records[1].ID)
	}
	if !math.IsNaN(records[1].Value(crossfilter.AttrSmoking)) {
		t.Errorf("empty cell should be NaN, got %v", records[1].Value(crossfilter.AttrSmoking))
	}
	if !math.IsNaN(records[2].Value(crossfilter.AttrInactivity)) {
		t.Errorf("malformed cell should be NaN")
	}
}

func TestParseHealthDataMissingColumn(t *testing.T) {
	data := "cnty_fips,percent_inactive\n1001,20\n"
	_, err := ParseHealthData(strings.NewReader(data))
	if !errors.Is(err, crossfilter.ErrResourceLoad) {
		t.Fatalf("expected ErrResourceLoad, got %v", err)
	}
	if _, err := ParseHealthData(strings.NewReader("")); !errors.Is(err, crossfilter.ErrResourceLoad) {
		t.Fatalf("expected ErrResourceLoad for empty input, got %v", err)
	}
}

func TestLoadHealthDataMissingFile(t *testing.T) {
	_, err := LoadHealthData(t.TempDir()+"/missing.csv", "")
	if !errors.Is(err, crossfilter.ErrResourceLoad) {
		t.Fatalf("expected ErrResourceLoad, got %v", err)
	}
}

func TestNormalizeFIPS(t *testing.T) {
	tests := map[string]string{
		"1001":   "01001",
		"01001":  "01001",
		" 6037 ": "06037",
		"":       "",
		"PR-001": "PR-001",
	}
	for in, want := range tests {
		if got := NormalizeFIPS(in); got != want {
			t.Errorf("NormalizeFIPS(%q) = %q, want %q", in, got, want)
		}
	}
}

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "01001", "properties": {"NAME": "Autauga"},
     "geometry": {"type": "Polygon", "coordinates": [[[-86.9,32.3],[-86.4,32.3],[-86.4,32.7],[-86.9,32.7],[-86.9,32.3]]]}},
    {"type": "Feature", "properties": {"GEOID": "15001", "NAME": "Hawaii"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[-156,19],[-155,19],[-155,20],[-156,20],[-156,19]]],[[[-157,21],[-156.8,21],[-156.8,21.2],[-157,21]]]]}},
    {"type": "Feature", "id": 6037, "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[-118.9,33.7],[-117.6,33.7],[-117.6,34.8],[-118.9,33.7]]]}},
    {"type": "Feature", "id": "99999", "properties": {},
     "geometry": {"type": "Point", "coordinates": [-100, 40]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}
  ]
}`

func TestParseCounties(t *testing.T) {
	counties, err := ParseCounties([]byte(sampleGeoJSON))
	if err != nil {
		t.Fatalf("ParseCounties failed: %v", err)
	}
	if len(counties) != 3 {
		t.Fatalf("expected 3 counties, got %d", len(counties))
	}
	want := []struct {
		id, name string
		polys    int
	}{
		{"01001", "Autauga", 1},
		{"15001", "Hawaii", 2},
		{"06037", "", 1},
	}
	for i, w := range want {
		c := counties[i]
		if c.ID != w.id || c.Name != w.name || len(c.Polygons) != w.polys {
			t.Errorf("county %d = {%s %s %d}, want %+v", i, c.ID, c.Name, len(c.Polygons), w)
		}
	}
}

func TestParseCountiesRejectsGarbage(t *testing.T) {
	if _, err := ParseCounties([]byte("not json")); !errors.Is(err, crossfilter.ErrResourceLoad) {
		t.Errorf("expected ErrResourceLoad, got %v", err)
	}
	empty := `{"type":"FeatureCollection","features":[]}`
	if _, err := ParseCounties([]byte(empty)); !errors.Is(err, crossfilter.ErrResourceLoad) {
		t.Errorf("expected ErrResourceLoad for empty collection, got %v", err)
	}
}
