package crossfilter

import "fmt"

// Store holds the loaded Dataset and the current FilteredSet.
type Store struct {
	dataset  Dataset
	filtered FilteredSet
}

func NewStore() *Store {
	return &Store{}
}

// Load assigns identity to the parsed records and stores them. Nothing is
// stored unless the whole input is accepted.
func (s *Store) Load(records []Record) (Dataset, error) {
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("%w: dataset is empty", ErrResourceLoad)
	}
	out := make([]Record, len(records))
	ids := make(map[string]int, len(records))
	for i, r := range records {
		if r.ID == "" {
			return Dataset{}, fmt.Errorf("%w: record %d has no id", ErrResourceLoad, i)
		}
		if prev, dup := ids[r.ID]; dup {
			return Dataset{}, fmt.Errorf("%w: duplicate id %q at records %d and %d", ErrResourceLoad, r.ID, prev, i)
		}
		r.index = i
		ids[r.ID] = i
		out[i] = r
	}
	s.dataset = Dataset{records: out, ids: ids}
	s.ResetFiltered()
	return s.dataset, nil
}

func (s *Store) Dataset() Dataset      { return s.dataset }
func (s *Store) Filtered() FilteredSet { return s.filtered }

// SetFiltered replaces the working subset. Subsets must come from Filter or
// ResetFiltered; no membership check is done here.
func (s *Store) SetFiltered(f FilteredSet) {
	s.filtered = f
}

func (s *Store) ResetFiltered() {
	s.filtered = FilteredSet{records: s.dataset.records}
}
