package healthmap

import (
	"math"
	"testing"
)

func TestAlbersUSAProject(t *testing.T) {
	p := DefaultAlbersUSA()

	tests := []struct {
		name         string
		lng, lat     float64
		wantX, wantY float64
	}{
		{"centre", -96.6, 38.7, 480, 250},
		{"San Francisco", -122.4194, 37.7749, 107.43, 214.14},
		{"New York", -74.006, 40.7128, 794.60, 176.53},
		{"Chicago", -87.6298, 41.8781, 604.05, 185.07},
		{"Anchorage inset", -150, 61.2, 170.86, 447.08},
		{"Honolulu inset", -157.8, 21.3, 299.50, 451.12},
	}
	for _, tt := range tests {
		x, y, ok := p.Project(tt.lng, tt.lat)
		if !ok {
			t.Errorf("%s: Project(%v, %v) not ok", tt.name, tt.lng, tt.lat)
			continue
		}
		if math.Abs(x-tt.wantX) > 0.5 || math.Abs(y-tt.wantY) > 0.5 {
			t.Errorf("%s: Project(%v, %v) = (%.2f, %.2f); want (%.2f, %.2f)", tt.name, tt.lng, tt.lat, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestAlbersUSAOutside(t *testing.T) {
	p := DefaultAlbersUSA()
	outside := []struct {
		name     string
		lng, lat float64
	}{
		{"Puerto Rico", -66.1, 18.4},
		{"null island", 0, 0},
		{"pole", 0, 90},
	}
	for _, tt := range outside {
		if x, y, ok := p.Project(tt.lng, tt.lat); ok {
			t.Errorf("%s: Project = (%v, %v), want not ok", tt.name, x, y)
		}
	}
}

func TestFitAlbersUSA(t *testing.T) {
	polygons := [][][][]float64{
		{{{-124, 32}, {-114, 32}, {-114, 42}, {-124, 42}, {-124, 32}}},
		{{{-80, 25}, {-70, 25}, {-70, 45}, {-80, 45}, {-80, 25}}},
		{{{-66.1, 18.4}, {-66, 18.4}, {-66, 18.5}, {-66.1, 18.4}}}, // not projectable
	}
	const w, h = 600.0, 400.0
	fit := FitAlbersUSA(polygons, w, h)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range polygons[:2] {
		for _, pt := range poly[0] {
			x, y, ok := fit.Project(pt[0], pt[1])
			if !ok {
				t.Fatalf("Project(%v) not ok after fit", pt)
			}
			minX, minY = math.Min(minX, x), math.Min(minY, y)
			maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
		}
	}
	const eps = 1e-6
	if minX < -eps || minY < -eps || maxX > w+eps || maxY > h+eps {
		t.Errorf("fitted bounds [%v,%v]-[%v,%v] exceed %vx%v", minX, minY, maxX, maxY, w, h)
	}
	// One dimension fills the canvas and the other is centred.
	fillsX := math.Abs(minX) < 1e-6 && math.Abs(maxX-w) < 1e-6
	fillsY := math.Abs(minY) < 1e-6 && math.Abs(maxY-h) < 1e-6
	if !fillsX && !fillsY {
		t.Errorf("fitted bounds [%v,%v]-[%v,%v] do not fill either dimension", minX, minY, maxX, maxY)
	}
	if math.Abs((minX+maxX)/2-w/2) > 1e-6 || math.Abs((minY+maxY)/2-h/2) > 1e-6 {
		t.Errorf("fitted bounds [%v,%v]-[%v,%v] are not centred", minX, minY, maxX, maxY)
	}

	if got := FitAlbersUSA(nil, w, h); got != DefaultAlbersUSA() {
		t.Errorf("FitAlbersUSA(nil) = %+v, want the default", got)
	}
}
