package incident

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// defaultCCWCharges are the charge descriptions counted as concealed-weapon arrests.
var defaultCCWCharges = []string{
	"WEAPONS OFFENSE - CONCEALED",
	"WEAPONS - CARRYING A CONCEALED WEAPON (CCW)",
	"WEAPONS - FIREARM IN AUTOMOBILE (CCW)",
}

// DefaultCCWCharges returns a copy of the built-in CCW charge list.
func DefaultCCWCharges() []string {
	out := make([]string, len(defaultCCWCharges))
	copy(out, defaultCCWCharges)
	return out
}

// ChargeSet is an immutable set of charge descriptions. The zero value is empty.
type ChargeSet struct {
	list []string
	set  map[string]struct{}
}

// NewChargeSet builds a set from trimmed charge descriptions. Blank entries
// and duplicates are dropped.
func NewChargeSet(charges ...string) ChargeSet {
	cs := ChargeSet{set: make(map[string]struct{}, len(charges))}
	for _, c := range charges {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := cs.set[c]; ok {
			continue
		}
		cs.set[c] = struct{}{}
		cs.list = append(cs.list, c)
	}
	return cs
}

// Contains reports whether the trimmed description is an exact member.
func (cs ChargeSet) Contains(description string) bool {
	_, ok := cs.set[strings.TrimSpace(description)]
	return ok
}

// List returns the charges in insertion order.
func (cs ChargeSet) List() []string {
	out := make([]string, len(cs.list))
	copy(out, cs.list)
	return out
}

// Len returns the number of charges.
func (cs ChargeSet) Len() int { return len(cs.list) }

// Params holds the fixed study parameters. It is built once at startup and
// passed by value; nothing in this package mutates it.
type Params struct {
	// PandemicFlagDate is the first day counted as pandemic.
	PandemicFlagDate time.Time
	// WindowAnchor is the date analysis windows are centred on. It is one
	// day after PandemicFlagDate in the default study.
	WindowAnchor time.Time
	// StudyMonths is the default half-width of the study window.
	StudyMonths int
	// FilterMonths is the default half-width used by FilterToWindow.
	FilterMonths int
	Charges      ChargeSet
}

// DefaultParams returns the parameters of the Detroit CCW study.
func DefaultParams() Params {
	return Params{
		PandemicFlagDate: time.Date(2020, time.March, 12, 0, 0, 0, 0, time.UTC),
		WindowAnchor:     time.Date(2020, time.March, 13, 0, 0, 0, 0, time.UTC),
		StudyMonths:      12,
		FilterMonths:     20,
		Charges:          NewChargeSet(defaultCCWCharges...),
	}
}

// Validate checks that the parameters describe a usable study.
func (p Params) Validate() error {
	if p.PandemicFlagDate.IsZero() {
		return eris.New("incident: pandemic flag date is required")
	}
	if p.WindowAnchor.IsZero() {
		return eris.New("incident: window anchor is required")
	}
	if p.StudyMonths <= 0 {
		return eris.Errorf("incident: study months must be positive, got %d", p.StudyMonths)
	}
	if p.FilterMonths <= 0 {
		return eris.Errorf("incident: filter months must be positive, got %d", p.FilterMonths)
	}
	if p.Charges.Len() == 0 {
		return eris.New("incident: at least one CCW charge is required")
	}
	return nil
}
