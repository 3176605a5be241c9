package config

import (
	"fmt"

	"github.com/Medic423/medport-sub003/infra/mqtt"
)

// NotifyConfig selects the notification dispatcher.
type NotifyConfig struct {
	// Dispatcher is "none", "bus" or "mqtt".
	Dispatcher string      `json:"dispatcher"`
	MQTT       mqtt.Config `json:"mqtt"`
}

// SetDefaults applies sane defaults.
func (c *NotifyConfig) SetDefaults() {
	if c.Dispatcher == "" {
		c.Dispatcher = "bus"
	}
}

// Validate checks dispatcher requirements.
func (c NotifyConfig) Validate() error {
	switch c.Dispatcher {
	case "none", "bus":
	case "mqtt":
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt dispatcher requires a broker")
		}
	default:
		return fmt.Errorf("unknown notification dispatcher %s", c.Dispatcher)
	}
	return nil
}
