package crossfilter

import "fmt"

// Dashboard is the single owner of the filter and attribute state. All
// mutations go through it, one event at a time.
type Dashboard struct {
	store      *Store
	attributes *AttributeSelector
	selection  *SelectionEngine
	sync       *Synchronizer
}

func NewDashboard() *Dashboard {
	d := &Dashboard{store: NewStore()}
	d.sync = NewSynchronizer(d.Snapshot)
	d.attributes = NewAttributeSelector(d.store, d.sync)
	d.selection = NewSelectionEngine(d.store)
	return d
}

// Load stores the dataset and resets the filter. It does not refresh; call
// Refresh once the views are attached.
func (d *Dashboard) Load(records []Record) (Dataset, error) {
	return d.store.Load(records)
}

// AddView attaches a view to the refresh cycle. A view that also implements
// PredicateSource becomes brushable under the same identity.
func (d *Dashboard) AddView(id ViewID, v View) {
	d.sync.Add(id, v)
	if src, ok := v.(PredicateSource); ok {
		d.selection.Register(id, src)
	}
}

func (d *Dashboard) Snapshot() Snapshot {
	return Snapshot{
		Dataset:   d.store.Dataset(),
		Filtered:  d.store.Filtered(),
		Attribute: d.attributes.Active(),
	}
}

func (d *Dashboard) Attribute() Attribute   { return d.attributes.Active() }
func (d *Dashboard) Filtered() FilteredSet { return d.store.Filtered() }

// SelectAttribute parses the control value and makes it active.
func (d *Dashboard) SelectAttribute(value string) error {
	attr, err := ParseAttribute(value)
	if err != nil {
		return err
	}
	return d.attributes.SetActive(attr)
}

// SetAttribute makes attr active, resetting the filter.
func (d *Dashboard) SetAttribute(attr Attribute) error {
	return d.attributes.SetActive(attr)
}

// EndBrush applies a finished brush gesture on view. A nil region clears
// all filtering. If the view cannot resolve the brush yet, nothing changes
// and no refresh happens.
func (d *Dashboard) EndBrush(view ViewID, region *BrushRegion) error {
	if _, err := d.selection.Apply(view, region, d.attributes.Active()); err != nil {
		return fmt.Errorf("apply brush: %w", err)
	}
	return d.sync.RefreshAll()
}

// ClearBrush removes all filtering, as if view's brush had been cleared.
func (d *Dashboard) ClearBrush(view ViewID) error {
	return d.EndBrush(view, nil)
}

func (d *Dashboard) Refresh() error {
	return d.sync.RefreshAll()
}
