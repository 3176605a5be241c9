package config

import "fmt"

// DistanceCacheConfig enables the Redis estimate cache.
type DistanceCacheConfig struct {
	Enabled    bool   `json:"enabled"`
	RedisAddr  string `json:"redis_addr"`
	TTLMinutes int    `json:"ttl_minutes"`
}

// DistanceConfig selects the distance provider.
type DistanceConfig struct {
	// Provider is "geo" for coordinate-based estimates or "google" for the
	// Directions API.
	Provider     string              `json:"provider"`
	GoogleAPIKey string              `json:"google_api_key"`
	GroundMph    float64             `json:"ground_mph"`
	AirMph       float64             `json:"air_mph"`
	Cache        DistanceCacheConfig `json:"cache"`
}

// SetDefaults applies sane defaults.
func (c *DistanceConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "geo"
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = 60
	}
}

// Validate checks provider requirements.
func (c DistanceConfig) Validate() error {
	switch c.Provider {
	case "geo":
	case "google":
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("google distance provider requires google_api_key")
		}
	default:
		return fmt.Errorf("unknown distance provider %s", c.Provider)
	}
	if c.Cache.Enabled && c.Cache.RedisAddr == "" {
		return fmt.Errorf("distance cache requires redis_addr")
	}
	return nil
}
