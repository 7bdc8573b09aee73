package crossfilter

import (
	"fmt"
	"image/color"
	"strings"
)

// Attribute names one of the measured health statistics. The value is the
// CSV column it is read from.
type Attribute string

const (
	AttrInactivity   Attribute = "percent_inactive"
	AttrHeartDisease Attribute = "percent_coronary_heart_disease"
	AttrCholesterol  Attribute = "percent_high_cholesterol"
	AttrSmoking      Attribute = "percent_smoking"

	NumAttributes = 4
)

// Attributes lists the known attributes in control order.
var Attributes = [NumAttributes]Attribute{AttrInactivity, AttrHeartDisease, AttrCholesterol, AttrSmoking}

var attributeNames = map[Attribute]string{
	AttrInactivity:   "Physical Inactivity (%)",
	AttrHeartDisease: "Heart Disease (%)",
	AttrCholesterol:  "Cholesterol (%)",
	AttrSmoking:      "Smoking (%)",
}

var attributeColors = map[Attribute]color.RGBA{
	AttrInactivity:   {0x64, 0xB5, 0xF6, 255},
	AttrHeartDisease: {0xE5, 0x73, 0x73, 255},
	AttrCholesterol:  {0x81, 0xC7, 0x84, 255},
	AttrSmoking:      {0xFF, 0xD5, 0x4F, 255},
}

func (a Attribute) index() (int, bool) {
	for i, k := range Attributes {
		if k == a {
			return i, true
		}
	}
	return 0, false
}

// Valid reports whether a is one of the four known attributes.
func (a Attribute) Valid() bool {
	_, ok := a.index()
	return ok
}

// DisplayName is the label shown on the attribute control and axes.
func (a Attribute) DisplayName() string {
	if n, ok := attributeNames[a]; ok {
		return n
	}
	return string(a)
}

// Color is the mark colour used for the attribute in the scatterplot and
// histogram.
func (a Attribute) Color() color.RGBA {
	return attributeColors[a]
}

// ParseAttribute accepts a column key or a display name.
func ParseAttribute(s string) (Attribute, error) {
	s = strings.TrimSpace(s)
	for _, a := range Attributes {
		if string(a) == s || strings.EqualFold(a.DisplayName(), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAttribute, s)
}

// Refresher is notified after every successful state change.
type Refresher interface {
	RefreshAll() error
}

// AttributeSelector owns the active attribute. Changing it resets the
// filter, since brush geometry drawn under the previous x mapping no longer
// means anything.
type AttributeSelector struct {
	active    Attribute
	store     *Store
	refresher Refresher
}

func NewAttributeSelector(store *Store, refresher Refresher) *AttributeSelector {
	return &AttributeSelector{active: AttrInactivity, store: store, refresher: refresher}
}

func (s *AttributeSelector) Active() Attribute { return s.active }

// SetActive switches the active attribute, resets the filter and refreshes
// every view. Unknown attributes are rejected and leave state untouched.
// The returned error is ErrInvalidAttribute or the joined view failures
// from the refresh.
func (s *AttributeSelector) SetActive(attr Attribute) error {
	if !attr.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAttribute, attr)
	}
	s.active = attr
	s.store.ResetFiltered()
	if s.refresher == nil {
		return nil
	}
	return s.refresher.RefreshAll()
}
