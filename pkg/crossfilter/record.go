// Package crossfilter holds the shared selection state behind the linked
// dashboard views: the record store, the active attribute, brush-to-filter
// translation and the refresh fan-out to every view.
package crossfilter

import (
	"errors"
	"math"
)

var (
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrResourceLoad     = errors.New("resource load failure")
	ErrGeometryPending  = errors.New("geometry not loaded yet")
)

// Record is one county row.
type Record struct {
	ID     string
	Name   string
	Values [NumAttributes]float64

	index int
}

// Value returns the record's measurement for attr, or NaN for an unknown
// attribute.
func (r Record) Value(attr Attribute) float64 {
	i, ok := attr.index()
	if !ok {
		return math.NaN()
	}
	return r.Values[i]
}

// Index is the record's position in the loaded Dataset.
func (r Record) Index() int { return r.index }

// Dataset is the full immutable record sequence. Callers must not modify the
// slice returned by Records.
type Dataset struct {
	records []Record
	ids     map[string]int
}

func (d Dataset) Records() []Record { return d.records }
func (d Dataset) Len() int          { return len(d.records) }

// Lookup returns the record with the given ID.
func (d Dataset) Lookup(id string) (Record, bool) {
	i, ok := d.ids[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// FilteredSet is the working subset shown by every view. A FilteredSet is
// never patched in place: every transition builds a new one.
type FilteredSet struct {
	records []Record
}

func (f FilteredSet) Records() []Record { return f.records }
func (f FilteredSet) Len() int          { return len(f.records) }

// IDs returns the member IDs in order.
func (f FilteredSet) IDs() []string {
	ids := make([]string, len(f.records))
	for i, r := range f.records {
		ids[i] = r.ID
	}
	return ids
}

// Contains reports whether a record with the given ID is a member.
func (f FilteredSet) Contains(id string) bool {
	for _, r := range f.records {
		if r.ID == id {
			return true
		}
	}
	return false
}

// IDSet returns the member IDs as a set, for views that look up many
// records at once.
func (f FilteredSet) IDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.records))
	for _, r := range f.records {
		set[r.ID] = struct{}{}
	}
	return set
}

// Snapshot is the read-only state every view renders from.
type Snapshot struct {
	Dataset   Dataset
	Filtered  FilteredSet
	Attribute Attribute
}
