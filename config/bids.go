package config

// BidsConfig tunes the bid expiry sweeper.
type BidsConfig struct {
	// ValidityMinutes is how long a pending bid stays valid; zero disables
	// expiry.
	ValidityMinutes int `json:"validity_minutes"`
	// SweepIntervalSeconds is how often the sweeper scans for stale bids.
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *BidsConfig) SetDefaults() {
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = 60
	}
}
