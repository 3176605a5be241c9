package model

// Facility is a requesting or receiving care location.
type Facility struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	Location GeoPoint `json:"location"`
}

// Agency is a transport provider operating one or more units.
type Agency struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// HomeFacilityID is the agency's base station, used for distance
	// estimates when a unit does not report its own location.
	HomeFacilityID string `json:"home_facility_id,omitempty"`
}

// AgencyPreferences tune how an agency is matched against requests.
// Zero values mean "no preference".
type AgencyPreferences struct {
	// ServiceArea lists origin facility IDs the agency serves. Empty
	// means any facility.
	ServiceArea []string `json:"service_area,omitempty"`
	// PreferredLevels restricts the transport levels the agency bids on.
	PreferredLevels []TransportLevel `json:"preferred_levels,omitempty"`
	// MaxDistanceMiles excludes requests farther from the agency's base.
	MaxDistanceMiles float64 `json:"max_distance_miles,omitempty"`
	// RevenueThreshold is the revenue target a transport is scored against.
	RevenueThreshold float64 `json:"revenue_threshold,omitempty"`
}

// ServesFacility reports whether the origin facility is inside the agency's
// service area.
func (p AgencyPreferences) ServesFacility(facilityID string) bool {
	if len(p.ServiceArea) == 0 {
		return true
	}
	for _, id := range p.ServiceArea {
		if id == facilityID {
			return true
		}
	}
	return false
}

// AcceptsLevel reports whether the agency bids on the given transport level.
func (p AgencyPreferences) AcceptsLevel(l TransportLevel) bool {
	if len(p.PreferredLevels) == 0 {
		return true
	}
	for _, have := range p.PreferredLevels {
		if have == l {
			return true
		}
	}
	return false
}
