// Package config holds the explicit runtime configuration for the store.
// The confinement location is passed into the core at construction instead of
// living in process-global state, so independent stores can coexist in one
// process (and tests can isolate themselves without environment juggling).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

// Default busy_timeout in milliseconds applied to every opened handle.
const DefaultBusyTimeout = 30000

// EnvBusyTimeout overrides the busy_timeout for all stores in the process.
const EnvBusyTimeout = "SQLITE_FS_BUSY_TIMEOUT"

// Config is the runtime configuration for a Store.
type Config struct {
	// Location is the directory every store file must lie below. It must be
	// absolute and should be disjoint from the hosting engine's own data
	// directory; the caller is responsible for that separation.
	Location string `yaml:"location"`

	// BusyTimeout is the SQLite busy_timeout in milliseconds. Zero means
	// DefaultBusyTimeout (or the env override).
	BusyTimeout int `yaml:"busy_timeout"`
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for use by a Store.
func (c *Config) Validate() error {
	if c.Location == "" {
		return fmt.Errorf("%w: location must not be empty", common.ErrConfiguration)
	}
	if !filepath.IsAbs(c.Location) {
		return fmt.Errorf("%w: location must be an absolute path: %s", common.ErrConfiguration, c.Location)
	}
	c.Location = filepath.Clean(c.Location)
	return nil
}

// EffectiveBusyTimeout resolves the busy_timeout to apply.
// Priority: env override > config value > default.
func (c *Config) EffectiveBusyTimeout() int {
	if val := os.Getenv(EnvBusyTimeout); val != "" {
		if timeout, err := strconv.Atoi(val); err == nil && timeout > 0 {
			return timeout
		}
	}
	if c.BusyTimeout > 0 {
		return c.BusyTimeout
	}
	return DefaultBusyTimeout
}
