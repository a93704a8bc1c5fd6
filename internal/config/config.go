package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the node configuration.
type Config struct {
	NodeID          string        `env:"LOCALSTORE_NODE_ID" envDefault:"localstore"`
	ListenAddr      string        `env:"LOCALSTORE_LISTEN_ADDR" envDefault:"127.0.0.1:50061"`
	QueueSize       int           `env:"LOCALSTORE_QUEUE_SIZE" envDefault:"64"`
	ShutdownTimeout time.Duration `env:"LOCALSTORE_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Verbose         bool          `env:"LOCALSTORE_VERBOSE" envDefault:"false"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration can start a node.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return errors.New("node ID cannot be empty")
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddr, err)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
