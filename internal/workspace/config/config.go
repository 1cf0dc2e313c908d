package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the workspace views.
type Config struct {
	// Limits for issue `where` expressions.
	ExpressionMaxLength int    `env:"WORKSPACE_EXPRESSION_MAX_LENGTH" envDefault:"512"`
	ExpressionCostLimit uint64 `env:"WORKSPACE_EXPRESSION_COST_LIMIT" envDefault:"10000"`

	// Issue list page size bounds.
	DefaultPageSize int `env:"WORKSPACE_DEFAULT_PAGE_SIZE" envDefault:"50"`
	MaxPageSize     int `env:"WORKSPACE_MAX_PAGE_SIZE" envDefault:"200"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load workspace configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ExpressionMaxLength <= 0 {
		return errors.New("workspace_expression_max_length must be positive")
	}
	if c.DefaultPageSize <= 0 || c.MaxPageSize <= 0 {
		return errors.New("workspace page sizes must be positive")
	}
	if c.DefaultPageSize > c.MaxPageSize {
		return errors.New("workspace_default_page_size cannot exceed workspace_max_page_size")
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ExpressionMaxLength: 512,
		ExpressionCostLimit: 10000,
		DefaultPageSize:     50,
		MaxPageSize:         200,
	}
}
