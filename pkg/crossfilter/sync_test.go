package crossfilter

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type failingView struct{ err error }

func (f failingView) Refresh(Snapshot) error { return f.err }

type panickingView struct{}

func (panickingView) Refresh(Snapshot) error { panic("boom") }

type idsView struct{ outputs [][]string }

func (v *idsView) Refresh(s Snapshot) error {
	v.outputs = append(v.outputs, append([]string{string(s.Attribute)}, s.Filtered.IDs()...))
	return nil
}

func TestRefreshOrderIsFixed(t *testing.T) {
	d := NewDashboard()
	if _, err := d.Load(scenarioDataset()); err != nil {
		t.Fatal(err)
	}
	var order []ViewID
	// Added out of order on purpose.
	d.AddView(ViewMap, &recordingView{id: ViewMap, order: &order})
	d.AddView(ViewScatter, &recordingView{id: ViewScatter, order: &order})
	d.AddView(ViewHistogram, &recordingView{id: ViewHistogram, order: &order})

	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	want := []ViewID{ViewScatter, ViewHistogram, ViewMap}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("refresh order = %v, want %v", order, want)
	}
}

func TestRefreshIsolatesViewFailures(t *testing.T) {
	d := NewDashboard()
	if _, err := d.Load(scenarioDataset()); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("histogram exploded")
	scatter := &recordingView{}
	m := &recordingView{}
	d.AddView(ViewScatter, panickingView{})
	d.AddView(ViewHistogram, failingView{err: boom})
	d.AddView(ViewMap, m)
	d.AddView(ViewScatter, scatter)

	err := d.Refresh()
	if err == nil {
		t.Fatal("expected joined error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("joined error does not wrap histogram failure: %v", err)
	}
	if !strings.Contains(err.Error(), "panic") {
		t.Errorf("panic not reported: %v", err)
	}
	if m.refreshes != 1 || scatter.refreshes != 1 {
		t.Errorf("healthy views not refreshed: map=%d scatter=%d", m.refreshes, scatter.refreshes)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	d, _ := newTestDashboard(t)
	v := &idsView{}
	d.AddView(ViewHistogram, v)

	r := BrushRegion{X0: 150, Y0: 0, X1: 350, Y1: 200}
	if err := d.EndBrush(ViewScatter, &r); err != nil {
		t.Fatal(err)
	}
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	if len(v.outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(v.outputs))
	}
	if !reflect.DeepEqual(v.outputs[0], v.outputs[1]) {
		t.Errorf("outputs differ: %v vs %v", v.outputs[0], v.outputs[1])
	}
}

func TestUnregisteredBrushViewFails(t *testing.T) {
	d := NewDashboard()
	if _, err := d.Load(scenarioDataset()); err != nil {
		t.Fatal(err)
	}
	r := BrushRegion{X0: 0, Y0: 0, X1: 5, Y1: 5}
	if err := d.EndBrush(ViewHistogram, &r); err == nil {
		t.Error("expected error for a view without a brush")
	}
	if d.Filtered().Len() != 3 {
		t.Errorf("state changed after failed brush")
	}
}
