// ABOUTME: Connection settings for the Charm KV backup target
// ABOUTME: Host and sync preferences, filled from the application config

package charm

import (
	"time"

	"github.com/charmbracelet/charm/kv"
)

const (
	// DefaultCharmHost is the self-hosted charm server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the Charm KV database.
	AppName = "commandcenter"
)

type Config struct {
	// Host is the charm server hostname.
	Host string `json:"host,omitempty"`

	// AutoSync pushes to the server after every write.
	AutoSync bool `json:"auto_sync"`

	// StaleThreshold is how old local data may get before a sync is forced.
	StaleThreshold time.Duration `json:"stale_threshold,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
	}
}

// WithHost returns the defaults pointed at host, or the default host when empty.
func WithHost(host string) *Config {
	cfg := DefaultConfig()
	if host != "" {
		cfg.Host = host
	}
	return cfg
}
