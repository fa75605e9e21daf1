package pool

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// WaitForever makes Get retry an exhausted pool until its context is
// cancelled.
const WaitForever = time.Duration(-1)

// Config holds configuration for a Pool
type Config struct {
	// MaxConnections caps how many handles may be checked out at once.
	// 0 means unbounded.
	MaxConnections int

	// StaleTimeout is the age past which a handle is closed instead of
	// reused. 0 disables staleness checks.
	StaleTimeout time.Duration

	// WaitTimeout bounds how long Get retries when the pool is exhausted.
	// 0 fails immediately; WaitForever retries until the context is
	// cancelled.
	WaitTimeout time.Duration

	// RetryInterval is the sleep between Get retries.
	RetryInterval time.Duration
}

// DefaultConfig returns the default pool configuration
func DefaultConfig() Config {
	return Config{
		MaxConnections: 20,
		StaleTimeout:   0,
		WaitTimeout:    30 * time.Second,
		RetryInterval:  100 * time.Millisecond,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() Config {
	config := DefaultConfig()

	if maxStr := os.Getenv("DBPOOL_MAX_CONNECTIONS"); maxStr != "" {
		if max, err := strconv.Atoi(maxStr); err == nil && max >= 0 {
			config.MaxConnections = max
		}
	}

	if staleStr := os.Getenv("DBPOOL_STALE_TIMEOUT"); staleStr != "" {
		if stale, err := time.ParseDuration(staleStr); err == nil && stale >= 0 {
			config.StaleTimeout = stale
		}
	}

	if waitStr := os.Getenv("DBPOOL_WAIT_TIMEOUT"); waitStr != "" {
		if waitStr == "forever" {
			config.WaitTimeout = WaitForever
		} else if wait, err := time.ParseDuration(waitStr); err == nil && wait >= 0 {
			config.WaitTimeout = wait
		}
	}

	if retryStr := os.Getenv("DBPOOL_RETRY_INTERVAL"); retryStr != "" {
		if retry, err := time.ParseDuration(retryStr); err == nil && retry > 0 {
			config.RetryInterval = retry
		}
	}

	return config
}

// LoadConfigFile reads a YAML configuration file and applies it on top of
// the defaults.
func LoadConfigFile(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read pool config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse pool config: %w", err)
	}

	return config, nil
}

// UnmarshalYAML decodes durations from strings such as "5m" or "100ms".
// The wait_timeout field additionally accepts "forever".
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		MaxConnections *int   `yaml:"max_connections"`
		StaleTimeout   string `yaml:"stale_timeout"`
		WaitTimeout    string `yaml:"wait_timeout"`
		RetryInterval  string `yaml:"retry_interval"`
	}{}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.MaxConnections != nil {
		if *raw.MaxConnections < 0 {
			return fmt.Errorf("max_connections must not be negative, got %d", *raw.MaxConnections)
		}
		c.MaxConnections = *raw.MaxConnections
	}

	if raw.StaleTimeout != "" {
		stale, err := time.ParseDuration(raw.StaleTimeout)
		if err != nil {
			return fmt.Errorf("invalid stale_timeout: %w", err)
		}
		c.StaleTimeout = stale
	}

	if raw.WaitTimeout != "" {
		if raw.WaitTimeout == "forever" {
			c.WaitTimeout = WaitForever
		} else {
			wait, err := time.ParseDuration(raw.WaitTimeout)
			if err != nil {
				return fmt.Errorf("invalid wait_timeout: %w", err)
			}
			c.WaitTimeout = wait
		}
	}

	if raw.RetryInterval != "" {
		retry, err := time.ParseDuration(raw.RetryInterval)
		if err != nil {
			return fmt.Errorf("invalid retry_interval: %w", err)
		}
		c.RetryInterval = retry
	}

	return nil
}
