package model

import (
	"strings"
	"time"
)

// UnitStatus is the operational state of a transport unit.
type UnitStatus string

const (
	UnitAvailable    UnitStatus = "AVAILABLE"
	UnitInUse        UnitStatus = "IN_USE"
	UnitOutOfService UnitStatus = "OUT_OF_SERVICE"
	UnitMaintenance  UnitStatus = "MAINTENANCE"
)

// ValidUnitStatus reports whether s is a known unit status.
func ValidUnitStatus(s UnitStatus) bool {
	switch s {
	case UnitAvailable, UnitInUse, UnitOutOfService, UnitMaintenance:
		return true
	default:
		return false
	}
}

// Capability is a machine-readable equipment flag on a unit. Free-text
// special requirements are matched against these flags only; unmatched terms
// never influence scoring.
type Capability string

const (
	CapVentilator Capability = "ventilator"
	CapECMO       Capability = "ecmo"
	CapBariatric  Capability = "bariatric"
	CapNeonatal   Capability = "neonatal"
	CapIsolation  Capability = "isolation"
	CapBalloon    Capability = "iabp"
)

var knownCapabilities = map[Capability]bool{
	CapVentilator: true,
	CapECMO:       true,
	CapBariatric:  true,
	CapNeonatal:   true,
	CapIsolation:  true,
	CapBalloon:    true,
}

// ParseCapability maps a free-text token to a known capability flag.
func ParseCapability(s string) (Capability, bool) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	return c, knownCapabilities[c]
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TimeWindow bounds a shift or availability window.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window. A zero window
// matches any time.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.Start.IsZero() && w.End.IsZero() {
		return true
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// Unit is a transport vehicle owned by an agency. Status is mutated only by
// the registry, driven by dispatch events and manual overrides. A unit is
// the assigned unit of at most one non-terminal request at a time.
type Unit struct {
	ID           string         `json:"id"`
	AgencyID     string         `json:"agency_id"`
	Level        TransportLevel `json:"level"`
	Status       UnitStatus     `json:"status"`
	Capabilities []Capability   `json:"capabilities,omitempty"`
	Location     *GeoPoint      `json:"location,omitempty"`
	Shift        *TimeWindow    `json:"shift,omitempty"`
}

// HasCapability reports whether the unit exposes the given flag.
func (u Unit) HasCapability(c Capability) bool {
	for _, have := range u.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
