package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, "user", cfg.StorageKey)
	assert.Equal(t, "client_sessions", cfg.Collection)
	assert.Equal(t, 168*time.Hour, cfg.TTL)
	assert.Empty(t, cfg.Secret)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SESSION_STORAGE", " Redis ")
	t.Setenv("SESSION_STORAGE_KEY", "profile")
	t.Setenv("SESSION_IDLE_TIMEOUT", "90s")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "profile", cfg.StorageKey)
	assert.Equal(t, 90*time.Second, cfg.IdleTimeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage = "sqlite" }},
		{"empty key", func(c *Config) { c.StorageKey = "" }},
		{"file without dir", func(c *Config) { c.Storage = StorageFile; c.FileDir = "" }},
		{"zero ttl", func(c *Config) { c.TTL = 0 }},
		{"zero sweep", func(c *Config) { c.SweepInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestRedisConfig_GetAddr(t *testing.T) {
	cfg := &RedisConfig{Host: "redis", Port: "6380"}
	assert.Equal(t, "redis:6380", cfg.GetAddr())

	client := NewRedisClient(cfg)
	defer client.Close()
	assert.Equal(t, "redis:6380", client.Options().Addr)
}
