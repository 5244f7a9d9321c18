package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// BROKER_URL is the raw websocket endpoint of a running chat server, e.g. ws://localhost:8080/ws/websocket
	BrokerURL   string `envconfig:"BROKER_URL"`
	BrokerHost  string `envconfig:"BROKER_HOST" default:"localhost"`
	PresenceURL string `envconfig:"PRESENCE_URL"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
