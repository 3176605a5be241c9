package config

import (
	"fmt"
	"time"

	"github.com/Medic423/medport-sub003/core/match"
)

// MatchingConfig tunes the candidate scoring engine.
type MatchingConfig struct {
	// Weights distribute 100 score points across the scoring factors.
	CapabilityWeight float64 `json:"capability_weight"`
	ProximityWeight  float64 `json:"proximity_weight"`
	HistoryWeight    float64 `json:"history_weight"`
	RevenueWeight    float64 `json:"revenue_weight"`
	// MaxDistanceMiles is where the proximity score reaches zero.
	MaxDistanceMiles float64 `json:"max_distance_miles"`
	// DistanceTimeoutMS bounds each distance provider call.
	DistanceTimeoutMS int `json:"distance_timeout_ms"`
	// FallbackDistanceMiles is assumed when no estimate can be produced.
	FallbackDistanceMiles float64 `json:"fallback_distance_miles"`
}

// SetDefaults applies the documented 30/30/20/20 weight split.
func (c *MatchingConfig) SetDefaults() {
	if c.CapabilityWeight == 0 && c.ProximityWeight == 0 && c.HistoryWeight == 0 && c.RevenueWeight == 0 {
		w := match.DefaultWeights()
		c.CapabilityWeight = w.Capability
		c.ProximityWeight = w.Proximity
		c.HistoryWeight = w.History
		c.RevenueWeight = w.Revenue
	}
	if c.MaxDistanceMiles == 0 {
		c.MaxDistanceMiles = 100
	}
	if c.DistanceTimeoutMS == 0 {
		c.DistanceTimeoutMS = 2000
	}
	if c.FallbackDistanceMiles == 0 {
		c.FallbackDistanceMiles = 50
	}
}

// Validate rejects negative weights.
func (c MatchingConfig) Validate() error {
	for _, w := range []float64{c.CapabilityWeight, c.ProximityWeight, c.HistoryWeight, c.RevenueWeight} {
		if w < 0 {
			return fmt.Errorf("matching weights must be non-negative")
		}
	}
	return nil
}

// EngineConfig converts to the engine's own configuration type.
func (c MatchingConfig) EngineConfig() match.Config {
	return match.Config{
		Weights: match.Weights{
			Capability: c.CapabilityWeight,
			Proximity:  c.ProximityWeight,
			History:    c.HistoryWeight,
			Revenue:    c.RevenueWeight,
		},
		DistanceTimeout:       time.Duration(c.DistanceTimeoutMS) * time.Millisecond,
		MaxDistanceMiles:      c.MaxDistanceMiles,
		FallbackDistanceMiles: c.FallbackDistanceMiles,
	}
}
