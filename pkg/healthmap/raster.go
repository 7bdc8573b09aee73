package healthmap

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
)

// outlineAlpha approximates a hairline white stroke at 1px.
const outlineAlpha = 0.3

// RasterizeMap draws every county with its fill and a faint white outline.
// fills must be parallel to g.Shapes; a short slice falls back to
// ColorNoData.
func RasterizeMap(g *Geometry, fills []color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{ColorPanel}, image.Point{}, draw.Src)
	for i, s := range g.Shapes {
		fill := ColorNoData
		if i < len(fills) {
			fill = fills[i]
		}
		for _, poly := range s.Polygons {
			fillPolygon(img, poly, fill)
		}
	}
	for _, s := range g.Shapes {
		for _, poly := range s.Polygons {
			for _, ring := range poly {
				drawRing(img, ring, ColorBorder, outlineAlpha)
			}
		}
	}
	return img
}

// fillPolygon scanline-fills a polygon with holes using the even-odd rule.
func fillPolygon(img *image.RGBA, rings [][]crossfilter.Point, c color.RGBA) {
	if len(rings) == 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	minY, maxY := float64(h), 0.0
	for _, ring := range rings {
		for _, p := range ring {
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	var nodes []int
	for y := int(minY); y <= int(maxY); y++ {
		if y < 0 || y >= h {
			continue
		}
		nodes = nodes[:0]
		fy := float64(y) + 0.5
		for _, ring := range rings {
			for i := 0; i < len(ring); i++ {
				j := (i + 1) % len(ring)
				a, b := ring[i], ring[j]
				if (a.Y < fy && b.Y >= fy) || (b.Y < fy && a.Y >= fy) {
					nodes = append(nodes, int(math.Round(a.X+(fy-a.Y)/(b.Y-a.Y)*(b.X-a.X))))
				}
			}
		}
		sort.Ints(nodes)
		for i := 0; i < len(nodes)-1; i += 2 {
			xs, xe := max(nodes[i], 0), min(nodes[i+1], w)
			for x := xs; x < xe; x++ {
				off := y*img.Stride + x*4
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
			}
		}
	}
}

func drawRing(img *image.RGBA, ring []crossfilter.Point, c color.RGBA, alpha float64) {
	for i := 0; i < len(ring); i++ {
		a, b := ring[i], ring[(i+1)%len(ring)]
		drawLine(img, int(a.X), int(a.Y), int(b.X), int(b.Y), c, alpha)
	}
}

// drawLine is Bresenham with alpha blending over the existing pixel.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, alpha float64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		if x1 >= 0 && x1 < w && y1 >= 0 && y1 < h {
			off := y1*img.Stride + x1*4
			img.Pix[off] = blend(img.Pix[off], c.R, alpha)
			img.Pix[off+1] = blend(img.Pix[off+1], c.G, alpha)
			img.Pix[off+2] = blend(img.Pix[off+2], c.B, alpha)
			img.Pix[off+3] = 255
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func blend(dst, src uint8, alpha float64) uint8 {
	return uint8(math.Round(float64(dst)*(1-alpha) + float64(src)*alpha))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
