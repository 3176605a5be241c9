package history

import (
	"github.com/Medic423/medport-sub003/core/factory"
	corehistory "github.com/Medic423/medport-sub003/core/history"
)

// init registers the built-in archive stores.
func init() {
	_ = corehistory.RegisterStore("sqlite", func(conf map[string]any) (corehistory.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})

	_ = corehistory.RegisterStore("jsonl", func(conf map[string]any) (corehistory.Store, error) {
		var c struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.MaxSizeMB == 0 {
			c.MaxSizeMB = 10
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
}
