package healthmap

import (
	"image/color"
	"math"
)

var (
	ColorBackground = color.RGBA{8, 10, 15, 255}
	ColorPanel      = color.RGBA{18, 21, 27, 255}
	ColorOutline    = color.RGBA{36, 42, 53, 255}
	ColorNoData     = color.RGBA{0xdd, 0xdd, 0xdd, 255}
	ColorBorder     = color.RGBA{255, 255, 255, 255}
	ColorBrush      = color.RGBA{119, 119, 119, 90}
)

// blues is the ColorBrewer 9-class Blues ramp, light to dark.
var blues = []color.RGBA{
	{0xf7, 0xfb, 0xff, 255},
	{0xde, 0xeb, 0xf7, 255},
	{0xc6, 0xdb, 0xef, 255},
	{0x9e, 0xca, 0xe1, 255},
	{0x6b, 0xae, 0xd6, 255},
	{0x42, 0x92, 0xc6, 255},
	{0x21, 0x71, 0xb5, 255},
	{0x08, 0x51, 0x9c, 255},
	{0x08, 0x30, 0x6b, 255},
}

// SequentialBlues maps [Lo, Hi] onto the Blues ramp.
type SequentialBlues struct {
	Lo, Hi float64
}

// At returns the colour for v. NaN gets ColorNoData; a degenerate domain
// maps to the middle of the ramp.
func (s SequentialBlues) At(v float64) color.RGBA {
	if math.IsNaN(v) || math.IsNaN(s.Lo) || math.IsNaN(s.Hi) {
		return ColorNoData
	}
	t := 0.5
	if s.Hi != s.Lo {
		t = (v - s.Lo) / (s.Hi - s.Lo)
	}
	return interpolateRamp(blues, t)
}

func interpolateRamp(ramp []color.RGBA, t float64) color.RGBA {
	t = math.Min(1, math.Max(0, t))
	pos := t * float64(len(ramp)-1)
	i := int(math.Floor(pos))
	if i >= len(ramp)-1 {
		return ramp[len(ramp)-1]
	}
	f := pos - float64(i)
	a, b := ramp[i], ramp[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 255}
}
