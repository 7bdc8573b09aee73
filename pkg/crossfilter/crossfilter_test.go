package crossfilter

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

type scatterSource struct {
	x, y Scale
}

func (s scatterSource) Predicate(r BrushRegion, attr Attribute) (Predicate, error) {
	return ScatterPredicate(r, attr, s.x, s.y), nil
}

type centroids map[string]Point

func (c centroids) Centroid(id string) (Point, bool) {
	p, ok := c[id]
	return p, ok
}

type mapSource struct {
	loc     CentroidLocator
	pending bool
}

func (m mapSource) Predicate(r BrushRegion, _ Attribute) (Predicate, error) {
	if m.pending {
		return nil, ErrGeometryPending
	}
	return MapPredicate(r, m.loc), nil
}

type recordingView struct {
	refreshes int
	last      Snapshot
	order     *[]ViewID
	id        ViewID
}

func (v *recordingView) Refresh(s Snapshot) error {
	v.refreshes++
	v.last = s
	if v.order != nil {
		*v.order = append(*v.order, v.id)
	}
	return nil
}

func rec(id string, inactive, heart float64) Record {
	r := Record{ID: id}
	r.Values[0] = inactive
	r.Values[1] = heart
	r.Values[2] = math.NaN()
	r.Values[3] = math.NaN()
	return r
}

func scenarioDataset() []Record {
	return []Record{rec("A", 10, 5), rec("B", 20, 15), rec("C", 30, 25)}
}

// x = 10v, y = 300 - 10v, so y is flipped like a screen axis.
func testScatterSource() scatterSource {
	return scatterSource{
		x: ScaleFunc(func(v float64) float64 { return 10 * v }),
		y: ScaleFunc(func(v float64) float64 { return 300 - 10*v }),
	}
}

func newTestDashboard(t *testing.T) (*Dashboard, *recordingView) {
	t.Helper()
	d := NewDashboard()
	if _, err := d.Load(scenarioDataset()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	scatter := &recordingView{id: ViewScatter}
	d.AddView(ViewScatter, struct {
		*recordingView
		scatterSource
	}{scatter, testScatterSource()})
	d.AddView(ViewMap, struct {
		*recordingView
		mapSource
	}{&recordingView{id: ViewMap}, mapSource{loc: centroids{"A": {10, 10}, "B": {20, 20}, "C": {90, 90}}}})
	return d, scatter
}

func TestScenarioScatterThenMapThenClear(t *testing.T) {
	d, scatter := newTestDashboard(t)

	// inactive in [15,35], heart in [10,30]
	r := BrushRegion{X0: 150, Y0: 0, X1: 350, Y1: 200}
	if err := d.EndBrush(ViewScatter, &r); err != nil {
		t.Fatalf("scatter brush: %v", err)
	}
	if got := d.Filtered().IDs(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Fatalf("after scatter brush got %v, want [B C]", got)
	}

	m := BrushRegion{X0: 0, Y0: 0, X1: 50, Y1: 50}
	if err := d.EndBrush(ViewMap, &m); err != nil {
		t.Fatalf("map brush: %v", err)
	}
	if got := d.Filtered().IDs(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("after map brush got %v, want [B]", got)
	}

	if err := d.ClearBrush(ViewMap); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := d.Filtered().IDs(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("after clear got %v, want [A B C]", got)
	}
	if scatter.refreshes != 3 {
		t.Errorf("expected 3 refreshes, got %d", scatter.refreshes)
	}
	if scatter.last.Filtered.Len() != 3 {
		t.Errorf("view saw %d records after clear, want 3", scatter.last.Filtered.Len())
	}
}

func TestBrushComposesWithPriorFilter(t *testing.T) {
	d, _ := newTestDashboard(t)

	// Map brush first keeps A and B.
	m := BrushRegion{X0: 0, Y0: 0, X1: 50, Y1: 50}
	if err := d.EndBrush(ViewMap, &m); err != nil {
		t.Fatal(err)
	}
	// A scatter brush that would match B and C on the full dataset must not
	// bring C back.
	r := BrushRegion{X0: 150, Y0: 0, X1: 350, Y1: 200}
	if err := d.EndBrush(ViewScatter, &r); err != nil {
		t.Fatal(err)
	}
	if got := d.Filtered().IDs(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("got %v, want [B]", got)
	}
}

func TestBoundaryInclusion(t *testing.T) {
	src := testScatterSource()
	in := FilteredSet{records: scenarioDataset()}

	tests := []struct {
		name   string
		region BrushRegion
		want   []string
	}{
		{"x0 edge", BrushRegion{X0: 100, Y0: 0, X1: 150, Y1: 300}, []string{"A"}},
		{"x1 edge", BrushRegion{X0: 50, Y0: 0, X1: 100, Y1: 300}, []string{"A"}},
		{"y0 edge", BrushRegion{X0: 0, Y0: 250, X1: 400, Y1: 260}, []string{"A"}},
		{"y1 edge", BrushRegion{X0: 0, Y0: 200, X1: 400, Y1: 250}, []string{"A"}},
		{"both y edges", BrushRegion{X0: 0, Y0: 150, X1: 400, Y1: 250}, []string{"A", "B"}},
		{"degenerate point hit", BrushRegion{X0: 200, Y0: 150, X1: 200, Y1: 150}, []string{"B"}},
	}
	for _, tt := range tests {
		p, _ := src.Predicate(tt.region, AttrInactivity)
		got := Filter(in, p).IDs()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFilterIsOrderedSubset(t *testing.T) {
	var records []Record
	for i := 0; i < 50; i++ {
		records = append(records, rec(string(rune('a'+i%26))+string(rune('A'+i/26)), float64(i), float64(50-i)))
	}
	s := NewStore()
	if _, err := s.Load(records); err != nil {
		t.Fatal(err)
	}
	src := testScatterSource()
	regions := []BrushRegion{
		{X0: 0, Y0: 0, X1: 500, Y1: 300},
		{X0: 100, Y0: 50, X1: 250, Y1: 260},
		{X0: 480, Y0: 0, X1: 490, Y1: 10},
		{X0: 1000, Y0: 1000, X1: 2000, Y1: 2000},
	}
	for _, r := range regions {
		in := s.Filtered()
		p, _ := src.Predicate(r, AttrInactivity)
		out := Filter(in, p)

		last := -1
		seen := map[string]bool{}
		for _, o := range out.Records() {
			if !in.Contains(o.ID) {
				t.Fatalf("region %+v: %s not in input", r, o.ID)
			}
			if seen[o.ID] {
				t.Fatalf("region %+v: duplicate %s", r, o.ID)
			}
			seen[o.ID] = true
			if o.Index() <= last {
				t.Fatalf("region %+v: order not preserved at %s", r, o.ID)
			}
			last = o.Index()
		}
		s.SetFiltered(out)
	}
}

func TestEmptyMatchIsNotReset(t *testing.T) {
	d, scatter := newTestDashboard(t)
	r := BrushRegion{X0: 1000, Y0: 1000, X1: 1100, Y1: 1100}
	if err := d.EndBrush(ViewScatter, &r); err != nil {
		t.Fatal(err)
	}
	if n := d.Filtered().Len(); n != 0 {
		t.Errorf("expected empty filtered set, got %d", n)
	}
	if scatter.last.Filtered.Len() != 0 || scatter.last.Dataset.Len() != 3 {
		t.Errorf("views should see empty filter over full dataset, got %d/%d",
			scatter.last.Filtered.Len(), scatter.last.Dataset.Len())
	}
}

func TestZeroAreaBrushClears(t *testing.T) {
	d, _ := newTestDashboard(t)
	r := BrushRegion{X0: 150, Y0: 0, X1: 350, Y1: 200}
	if err := d.EndBrush(ViewScatter, &r); err != nil {
		t.Fatal(err)
	}
	flat := BrushRegion{X0: 10, Y0: 10, X1: 10, Y1: 80}
	if err := d.EndBrush(ViewScatter, &flat); err != nil {
		t.Fatal(err)
	}
	if n := d.Filtered().Len(); n != 3 {
		t.Errorf("zero-area brush should reset to 3 records, got %d", n)
	}
}

func TestAttributeChangeResetsFilter(t *testing.T) {
	d, scatter := newTestDashboard(t)
	r := BrushRegion{X0: 150, Y0: 0, X1: 350, Y1: 200}
	if err := d.EndBrush(ViewScatter, &r); err != nil {
		t.Fatal(err)
	}
	if err := d.SelectAttribute("Smoking (%)"); err != nil {
		t.Fatalf("SelectAttribute: %v", err)
	}
	if d.Attribute() != AttrSmoking {
		t.Errorf("active = %s, want %s", d.Attribute(), AttrSmoking)
	}
	if n := d.Filtered().Len(); n != 3 {
		t.Errorf("attribute change should reset filter, got %d records", n)
	}
	if scatter.last.Attribute != AttrSmoking {
		t.Errorf("views not refreshed with new attribute")
	}
}

func TestInvalidAttributeKeepsState(t *testing.T) {
	d, scatter := newTestDashboard(t)
	r := BrushRegion{X0: 150, Y0: 0, X1: 350, Y1: 200}
	if err := d.EndBrush(ViewScatter, &r); err != nil {
		t.Fatal(err)
	}
	before := scatter.refreshes

	err := d.SelectAttribute("percent_obesity")
	if !errors.Is(err, ErrInvalidAttribute) {
		t.Fatalf("expected ErrInvalidAttribute, got %v", err)
	}
	if err := d.SetAttribute(Attribute("bogus")); !errors.Is(err, ErrInvalidAttribute) {
		t.Fatalf("expected ErrInvalidAttribute, got %v", err)
	}
	if d.Attribute() != AttrInactivity {
		t.Errorf("attribute changed to %s", d.Attribute())
	}
	if n := d.Filtered().Len(); n != 2 {
		t.Errorf("filter changed: %d records", n)
	}
	if scatter.refreshes != before {
		t.Errorf("rejected attribute triggered a refresh")
	}
}

func TestPendingGeometryIgnoresBrush(t *testing.T) {
	d := NewDashboard()
	if _, err := d.Load(scenarioDataset()); err != nil {
		t.Fatal(err)
	}
	v := &recordingView{}
	d.AddView(ViewMap, struct {
		*recordingView
		mapSource
	}{v, mapSource{pending: true}})

	r := BrushRegion{X0: 0, Y0: 0, X1: 50, Y1: 50}
	err := d.EndBrush(ViewMap, &r)
	if !errors.Is(err, ErrGeometryPending) {
		t.Fatalf("expected ErrGeometryPending, got %v", err)
	}
	if d.Filtered().Len() != 3 || v.refreshes != 0 {
		t.Errorf("pending brush changed state: %d records, %d refreshes", d.Filtered().Len(), v.refreshes)
	}
}

func TestMapPredicateDropsUnlocated(t *testing.T) {
	in := FilteredSet{records: scenarioDataset()}
	p := MapPredicate(BrushRegion{X0: 0, Y0: 0, X1: 1000, Y1: 1000}, centroids{"A": {1, 1}, "C": {math.NaN(), 5}})
	if got := Filter(in, p).IDs(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("got %v, want [A]", got)
	}
}

func TestStoreLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
	}{
		{"empty", nil},
		{"missing id", []Record{rec("A", 1, 1), rec("", 2, 2)}},
		{"duplicate id", []Record{rec("A", 1, 1), rec("B", 2, 2), rec("A", 3, 3)}},
	}
	for _, tt := range tests {
		s := NewStore()
		if _, err := s.Load(tt.records); !errors.Is(err, ErrResourceLoad) {
			t.Errorf("%s: expected ErrResourceLoad, got %v", tt.name, err)
		}
		if s.Dataset().Len() != 0 || s.Filtered().Len() != 0 {
			t.Errorf("%s: partial dataset exposed", tt.name)
		}
	}
}

func TestStoreLookup(t *testing.T) {
	s := NewStore()
	ds, err := s.Load(scenarioDataset())
	if err != nil {
		t.Fatal(err)
	}
	r, ok := ds.Lookup("C")
	if !ok || r.Value(AttrInactivity) != 30 || r.Index() != 2 {
		t.Errorf("Lookup(C) = %+v, %v", r, ok)
	}
	if _, ok := ds.Lookup("Z"); ok {
		t.Errorf("Lookup(Z) should fail")
	}
	if !math.IsNaN(r.Value(Attribute("nope"))) {
		t.Errorf("unknown attribute should read NaN")
	}
}

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		in   string
		want Attribute
		ok   bool
	}{
		{"percent_inactive", AttrInactivity, true},
		{"Heart Disease (%)", AttrHeartDisease, true},
		{" cholesterol (%) ", AttrCholesterol, true},
		{"percent_smoking", AttrSmoking, true},
		{"", "", false},
		{"smoking", "", false},
	}
	for _, tt := range tests {
		got, err := ParseAttribute(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseAttribute(%q) = %q, %v", tt.in, got, err)
		}
	}
}
