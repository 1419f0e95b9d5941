package config

import (
	"time"

	"github.com/vietddude/catalog/internal/core/resilience"
	redisclient "github.com/vietddude/catalog/internal/infra/redis"
	"github.com/vietddude/catalog/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Execution ExecutionConfig    `yaml:"execution"`
	Redis     redisclient.Config `yaml:"redis"`
	Logging   LoggingConfig      `yaml:"logging"`
	Database  postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ExecutionConfig holds retry, timeout and worker pool settings.
type ExecutionConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	Timeout     time.Duration `yaml:"timeout"`
	Workers     int           `yaml:"workers"`

	// delaySet is true when the file names a delay, so Load keeps an explicit 0s.
	delaySet bool
}

// UnmarshalYAML decodes the execution block and records whether delay was present.
func (c *ExecutionConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		MaxAttempts int            `yaml:"max_attempts"`
		Delay       *time.Duration `yaml:"delay"`
		Timeout     time.Duration  `yaml:"timeout"`
		Workers     int            `yaml:"workers"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	*c = ExecutionConfig{
		MaxAttempts: raw.MaxAttempts,
		Timeout:     raw.Timeout,
		Workers:     raw.Workers,
	}
	if raw.Delay != nil {
		c.Delay = *raw.Delay
		c.delaySet = true
	}
	return nil
}

// Resilience converts the execution settings into a retry policy config.
func (c ExecutionConfig) Resilience() resilience.Config {
	return resilience.Config{
		MaxAttempts: c.MaxAttempts,
		Delay:       c.Delay,
		Timeout:     c.Timeout,
	}
}
