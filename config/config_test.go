package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `server:
  addr: ":9000"
  prom_addr: ":9100"
matching:
  capability_weight: 40
  proximity_weight: 30
  history_weight: 15
  revenue_weight: 15
  max_distance_miles: 120
distance:
  provider: "google"
  google_api_key: "test-key"
  cache:
    enabled: true
    redis_addr: "localhost:6379"
history:
  backend: "sqlite"
  path: "archive.db"
notify:
  dispatcher: "mqtt"
  mqtt:
    broker: "tcp://localhost:1883"
    client_id: "medport"
bids:
  validity_minutes: 30
metrics:
  sinks:
    - type: "nop"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":9000"},
		{"server.prom_addr", cfg.Server.PromAddr, ":9100"},
		{"matching.capability", cfg.Matching.CapabilityWeight, 40.0},
		{"matching.max_distance", cfg.Matching.MaxDistanceMiles, 120.0},
		{"distance.provider", cfg.Distance.Provider, "google"},
		{"distance.cache", cfg.Distance.Cache.Enabled, true},
		{"distance.redis", cfg.Distance.Cache.RedisAddr, "localhost:6379"},
		{"history.backend", cfg.History.Backend, "sqlite"},
		{"notify.dispatcher", cfg.Notify.Dispatcher, "mqtt"},
		{"notify.broker", cfg.Notify.MQTT.Broker, "tcp://localhost:1883"},
		{"bids.validity", cfg.Bids.ValidityMinutes, 30},
		{"bids.sweep_default", cfg.Bids.SweepIntervalSeconds, 60},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \"\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("default addr = %s", cfg.Server.Addr)
	}
	if cfg.Distance.Provider != "geo" {
		t.Fatalf("default provider = %s", cfg.Distance.Provider)
	}
	if cfg.History.Backend != "none" {
		t.Fatalf("default history backend = %s", cfg.History.Backend)
	}
	if cfg.Matching.CapabilityWeight != 30 || cfg.Matching.ProximityWeight != 30 {
		t.Fatalf("default weights not applied: %+v", cfg.Matching)
	}
	if cfg.Notify.Dispatcher != "bus" {
		t.Fatalf("default dispatcher = %s", cfg.Notify.Dispatcher)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MP_SERVER__ADDR", ":7070")
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env override ignored, addr = %s", cfg.Server.Addr)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"google without key", "distance:\n  provider: \"google\"\n"},
		{"cache without redis", "distance:\n  provider: \"geo\"\n  cache:\n    enabled: true\n"},
		{"unknown history backend", "history:\n  backend: \"etcd\"\n"},
		{"unknown dispatcher", "notify:\n  dispatcher: \"carrier-pigeon\"\n"},
		{"mqtt without broker", "notify:\n  dispatcher: \"mqtt\"\n"},
	}
	for _, c := range cases {
		path := writeConfig(t, c.data)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
