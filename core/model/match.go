package model

// MatchCandidate is a scored agency/unit pairing for a request's criteria.
// Candidates are derived, never persisted. Reasons lists the weighted
// factors that contributed materially to the score, for display.
type MatchCandidate struct {
	AgencyID string `json:"agency_id"`
	UnitID   string `json:"unit_id"`
	// UnitStatus is a snapshot taken at scoring time. It may be stale by
	// the time a bid on this candidate is accepted; accept re-validates.
	UnitStatus UnitStatus `json:"unit_status"`
	// Score is normalized to 0-100.
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
	// EstimatedArrivalMin is the projected minutes until the unit reaches
	// the origin facility.
	EstimatedArrivalMin float64 `json:"estimated_arrival_min"`
	EstimatedRevenue    float64 `json:"estimated_revenue,omitempty"`
	// IgnoredRequirements preserves special-requirement terms that matched
	// no known capability flag. They are display-only.
	IgnoredRequirements []string `json:"ignored_requirements,omitempty"`
}
