package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("WORKSPACE_EXPRESSION_MAX_LENGTH", "64")
	t.Setenv("WORKSPACE_EXPRESSION_COST_LIMIT", "0")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 64, cfg.ExpressionMaxLength)
	assert.Zero(t, cfg.ExpressionCostLimit)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero expression length", func(c *Config) { c.ExpressionMaxLength = 0 }},
		{"zero page size", func(c *Config) { c.DefaultPageSize = 0 }},
		{"default above max", func(c *Config) { c.DefaultPageSize = 500 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
