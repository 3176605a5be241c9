package config

// ServerConfig defines the HTTP listeners.
type ServerConfig struct {
	// Addr is the API listen address.
	Addr string `json:"addr"`
	// PromAddr is the Prometheus metrics listen address; empty disables it.
	PromAddr string `json:"prom_addr"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
