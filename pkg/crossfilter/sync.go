package crossfilter

import (
	"errors"
	"fmt"
	"log"
)

// View is a rendering collaborator. Refresh rebuilds the view entirely from
// the snapshot; it must not keep state derived from an earlier snapshot.
type View interface {
	Refresh(s Snapshot) error
}

type registeredView struct {
	id   ViewID
	view View
}

// Synchronizer re-renders every view from one snapshot in a fixed order.
type Synchronizer struct {
	snapshot func() Snapshot
	views    []registeredView
}

// NewSynchronizer takes the function that produces the current snapshot.
func NewSynchronizer(snapshot func() Snapshot) *Synchronizer {
	return &Synchronizer{snapshot: snapshot}
}

// Add registers a view. Views refresh in ViewID order regardless of the
// order they were added in.
func (s *Synchronizer) Add(id ViewID, v View) {
	i := len(s.views)
	for i > 0 && s.views[i-1].id > id {
		i--
	}
	s.views = append(s.views, registeredView{})
	copy(s.views[i+1:], s.views[i:])
	s.views[i] = registeredView{id: id, view: v}
}

// RefreshAll refreshes every view. A failing view does not stop the others;
// all failures are returned joined.
func (s *Synchronizer) RefreshAll() error {
	snap := s.snapshot()
	var errs []error
	for _, rv := range s.views {
		if err := refreshOne(rv, snap); err != nil {
			log.Printf("[sync] %s refresh failed: %v", rv.id, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func refreshOne(rv registeredView, snap Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", rv.id, r)
		}
	}()
	if err := rv.view.Refresh(snap); err != nil {
		return fmt.Errorf("%s: %w", rv.id, err)
	}
	return nil
}
