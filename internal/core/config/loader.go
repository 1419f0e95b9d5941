package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/catalog/internal/core/resilience"
)

// Defaults applied by Load for unset values. An explicit delay of 0s is kept.
const (
	DefaultPort        = 8080
	DefaultMaxAttempts = 3
	DefaultDelay       = 500 * time.Millisecond
	DefaultTimeout     = 2 * time.Second
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Execution.MaxAttempts == 0 {
		c.Execution.MaxAttempts = DefaultMaxAttempts
	}
	if !c.Execution.delaySet {
		c.Execution.Delay = DefaultDelay
	}
	if c.Execution.Timeout == 0 {
		c.Execution.Timeout = DefaultTimeout
	}
	if c.Execution.Workers == 0 {
		c.Execution.Workers = resilience.DefaultWorkers
	}
}

// Validate checks settings that cannot be defaulted.
func (c *AppConfig) Validate() error {
	if err := c.Execution.Resilience().Validate(); err != nil {
		return err
	}
	if c.Execution.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", resilience.ErrInvalidConfig, c.Execution.Workers)
	}
	if c.Server.APIKey == "" {
		return errors.New("server.api_key is required")
	}
	return nil
}
