package config

import (
	"fmt"

	"github.com/Medic423/medport-sub003/core/factory"
)

// HistoryConfig defines the optional durable archive behind the in-memory
// history tracker.
type HistoryConfig struct {
	// Backend selects the archive store: "none", "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the archive.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when a JSONL file exceeds this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Backend != "none" && c.Path == "" {
		c.Path = "history." + map[string]string{"jsonl": "jsonl", "sqlite": "db"}[c.Backend]
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	switch c.Backend {
	case "none", "jsonl", "sqlite":
	default:
		return fmt.Errorf("unknown history backend %s", c.Backend)
	}
	if c.Backend != "none" && c.Path == "" {
		return fmt.Errorf("history archive requires a path")
	}
	return nil
}

// ModuleConfig converts to the store factory's configuration, nil when no
// archive is configured.
func (c HistoryConfig) ModuleConfig() *factory.ModuleConfig {
	if c.Backend == "none" {
		return nil
	}
	return &factory.ModuleConfig{
		Type: c.Backend,
		Conf: map[string]any{
			"path":         c.Path,
			"max_size_mb":  c.MaxSizeMB,
			"max_backups":  c.MaxBackups,
			"max_age_days": c.MaxAgeDays,
		},
	}
}
