// Package healthmap renders the linked scatterplot, histogram and county
// choropleth on top of the crossfilter state.
package healthmap

import (
	"math"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
)

// LinearScale maps the domain [D0,D1] onto the range [R0,R1]. A degenerate
// domain maps everything to the middle of the range.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

func (s LinearScale) Apply(v float64) float64 {
	if math.IsNaN(v) || math.IsNaN(s.D0) || math.IsNaN(s.D1) {
		return math.NaN()
	}
	if s.D1 == s.D0 {
		return s.R0 + (s.R1-s.R0)/2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Invert maps a range position back to the domain.
func (s LinearScale) Invert(p float64) float64 {
	if s.R1 == s.R0 {
		return s.D0
	}
	return s.D0 + (p-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// Extent returns the min and max of attr over records, ignoring NaN.
func Extent(records []crossfilter.Record, attr crossfilter.Attribute) (lo, hi float64, ok bool) {
	lo, hi = math.NaN(), math.NaN()
	for _, r := range records {
		v := r.Value(attr)
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

func tickSpec(start, stop float64, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1, i2 = math.Round(start*inc), math.Round(stop*inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1, i2 = math.Round(start/inc), math.Round(stop/inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// Ticks returns roughly count evenly spaced round values in [start, stop],
// using 1, 2 and 5 multiples of a power of ten.
func Ticks(start, stop float64, count int) []float64 {
	if math.IsNaN(start) || math.IsNaN(stop) || count <= 0 {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	if stop < start {
		start, stop = stop, start
	}
	i1, i2, inc := tickSpec(start, stop, float64(count))
	if !(i2 >= i1) {
		return nil
	}
	n := int(i2-i1) + 1
	ticks := make([]float64, n)
	for i := range ticks {
		if inc < 0 {
			ticks[i] = (i1 + float64(i)) / -inc
		} else {
			ticks[i] = (i1 + float64(i)) * inc
		}
	}
	return ticks
}

// Bin is one histogram bucket covering [X0, X1). The last bin also holds X1.
type Bin struct {
	X0, X1 float64
	Count  int
}

// BinValues buckets values over [lo, hi] using the nice thresholds for
// count bins. Values outside the domain and NaN are ignored.
func BinValues(values []float64, lo, hi float64, count int) []Bin {
	if math.IsNaN(lo) || math.IsNaN(hi) || hi < lo {
		return nil
	}
	var thresholds []float64
	for _, t := range Ticks(lo, hi, count) {
		if t > lo && t < hi {
			thresholds = append(thresholds, t)
		}
	}
	bins := make([]Bin, len(thresholds)+1)
	for i := range bins {
		bins[i].X0, bins[i].X1 = lo, hi
		if i > 0 {
			bins[i].X0 = thresholds[i-1]
		}
		if i < len(thresholds) {
			bins[i].X1 = thresholds[i]
		}
	}
	for _, v := range values {
		if !(v >= lo && v <= hi) {
			continue
		}
		// bisect right
		i := 0
		for i < len(thresholds) && thresholds[i] <= v {
			i++
		}
		bins[i].Count++
	}
	return bins
}
