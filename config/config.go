// Package config loads the service configuration from YAML or JSON files
// with MP_ environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Medic423/medport-sub003/core/metrics"
)

// Config is the root of the service configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Matching MatchingConfig `json:"matching"`
	Distance DistanceConfig `json:"distance"`
	History  HistoryConfig  `json:"history"`
	Notify   NotifyConfig   `json:"notify"`
	Bids     BidsConfig     `json:"bids"`
	Metrics  metrics.Config `json:"metrics"`
}

// Load reads the file at path, applies MP_ environment overrides
// (MP_SERVER__ADDR maps to server.addr), fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("MP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Matching.SetDefaults()
	cfg.Distance.SetDefaults()
	cfg.History.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.Bids.SetDefaults()
	if err := cfg.Distance.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Matching.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
