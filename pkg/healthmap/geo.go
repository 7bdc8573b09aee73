package healthmap

import (
	"math"
)

const degrees = math.Pi / 180

// conic is an Albers equal-area conic projection in unit scale. Output is
// already offset and y-flipped into the composite's unit screen space.
type conic struct {
	n, c, r0 float64
	rotate   float64
	cx, cy   float64
	scale    float64
	offX     float64
	offY     float64
	clip     [4]float64 // x0, y0, x1, y1
}

func newConic(phi0, phi1, rotate, centerLng, centerLat, scale, offX, offY float64, clip [4]float64) conic {
	sy0 := math.Sin(phi0 * degrees)
	n := (sy0 + math.Sin(phi1*degrees)) / 2
	c := 1 + sy0*(2*n-sy0)
	p := conic{n: n, c: c, r0: math.Sqrt(c) / n, rotate: rotate * degrees, scale: scale, offX: offX, offY: offY, clip: clip}
	p.cx, p.cy = p.raw(centerLng*degrees, centerLat*degrees)
	return p
}

func (p conic) raw(lambda, phi float64) (x, y float64) {
	r := math.Sqrt(p.c-2*p.n*math.Sin(phi)) / p.n
	return r * math.Sin(lambda*p.n), p.r0 - r*math.Cos(lambda*p.n)
}

func (p conic) unit(lng, lat float64) (x, y float64, ok bool) {
	lambda := lng*degrees + p.rotate
	lambda = math.Remainder(lambda, 2*math.Pi)
	rx, ry := p.raw(lambda, lat*degrees)
	x = p.offX + p.scale*(rx-p.cx)
	y = p.offY - p.scale*(ry-p.cy)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, false
	}
	ok = x >= p.clip[0] && x <= p.clip[2] && y >= p.clip[1] && y <= p.clip[3]
	return x, y, ok
}

// The lower 48 plus Alaska and Hawaii insets, in unit scale with a zero
// translate. Each part only claims points landing inside its own clip box.
var albersUSAParts = []conic{
	newConic(29.5, 45.5, 96, -0.6, 38.7, 1, 0, 0, [4]float64{-.455, -.238, .455, .238}),
	newConic(55, 65, 154, -2, 58.5, 0.35, -.307, .201, [4]float64{-.425, .120, -.214, .234}),
	newConic(8, 18, 157, -3, 19.9, 1, -.205, .212, [4]float64{-.214, .166, -.115, .234}),
}

// AlbersUSA is the composite conic equal-area projection of the United
// States with Alaska and Hawaii inset in the lower left.
type AlbersUSA struct {
	Scale  float64
	TX, TY float64
}

// DefaultAlbersUSA fits the contiguous states in a 960x500 canvas.
func DefaultAlbersUSA() AlbersUSA {
	return AlbersUSA{Scale: 1070, TX: 480, TY: 250}
}

// Project converts lng/lat in degrees to canvas pixels. Points outside every
// part of the composite (Puerto Rico, open ocean) report ok=false.
func (a AlbersUSA) Project(lng, lat float64) (x, y float64, ok bool) {
	ux, uy, ok := projectUnit(lng, lat)
	if !ok {
		return 0, 0, false
	}
	return a.TX + a.Scale*ux, a.TY + a.Scale*uy, true
}

func projectUnit(lng, lat float64) (x, y float64, ok bool) {
	if lat > 89.5 || lat < -89.5 {
		return 0, 0, false
	}
	for _, p := range albersUSAParts {
		if x, y, ok := p.unit(lng, lat); ok {
			return x, y, true
		}
	}
	return 0, 0, false
}

// FitAlbersUSA scales and centres the projection so that every projectable
// point of polygons fills a width x height canvas.
func FitAlbersUSA(polygons [][][][]float64, width, height float64) AlbersUSA {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, poly := range polygons {
		for _, ring := range poly {
			for _, pt := range ring {
				if len(pt) < 2 {
					continue
				}
				x, y, ok := projectUnit(pt[0], pt[1])
				if !ok {
					continue
				}
				x0, y0 = math.Min(x0, x), math.Min(y0, y)
				x1, y1 = math.Max(x1, x), math.Max(y1, y)
			}
		}
	}
	if math.IsInf(x0, 0) || x1 == x0 || y1 == y0 {
		return DefaultAlbersUSA()
	}
	k := math.Min(width/(x1-x0), height/(y1-y0))
	return AlbersUSA{
		Scale: k,
		TX:    (width - k*(x1+x0)) / 2,
		TY:    (height - k*(y1+y0)) / 2,
	}
}
