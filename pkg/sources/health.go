// Package sources loads the county health table and county boundary shapes
// the dashboard is built on.
package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sudorandom/health-explorer/pkg/crossfilter"
	"github.com/sudorandom/health-explorer/pkg/utils"
)

const (
	columnFIPS = "cnty_fips"
	columnName = "display_name"
)

// NormalizeFIPS left-pads numeric county codes to five digits so that the
// table and the shapes agree ("1001" and "01001" are the same county).
func NormalizeFIPS(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return fmt.Sprintf("%05d", n)
	}
	return s
}

// ParseHealthData reads the county health CSV. Unparseable numbers become
// NaN; a missing required column or an unreadable stream fails the whole
// load.
func ParseHealthData(r io.Reader) ([]crossfilter.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", crossfilter.ErrResourceLoad, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	fipsCol, ok := cols[columnFIPS]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", crossfilter.ErrResourceLoad, columnFIPS)
	}
	var attrCols [crossfilter.NumAttributes]int
	for i, a := range crossfilter.Attributes {
		c, ok := cols[string(a)]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", crossfilter.ErrResourceLoad, a)
		}
		attrCols[i] = c
	}
	nameCol, hasName := cols[columnName]

	var records []crossfilter.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", crossfilter.ErrResourceLoad, line, err)
		}
		rec := crossfilter.Record{ID: NormalizeFIPS(field(row, fipsCol))}
		if hasName {
			rec.Name = field(row, nameCol)
		}
		for i, c := range attrCols {
			rec.Values[i] = parsePercent(field(row, c))
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadHealthData opens location (a path or URL) and parses it.
func LoadHealthData(location, cacheDir string) ([]crossfilter.Record, error) {
	rc, err := utils.Open(location, cacheDir, "[health]")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crossfilter.ErrResourceLoad, err)
	}
	defer rc.Close()
	return ParseHealthData(rc)
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parsePercent(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
