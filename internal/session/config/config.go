package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Storage drivers for persisted client sessions.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

// Config holds all configuration for the session module.
type Config struct {
	// Persistence
	Storage    string        `env:"SESSION_STORAGE" envDefault:"file"`
	FileDir    string        `env:"SESSION_FILE_DIR" envDefault:".sessions"`
	StorageKey string        `env:"SESSION_STORAGE_KEY" envDefault:"user"`
	Collection string        `env:"SESSION_COLLECTION" envDefault:"client_sessions"`
	KeyPrefix  string        `env:"SESSION_REDIS_PREFIX" envDefault:"workly:session:"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// SESSION_SECRET enables sealing of persisted records.
	Secret string `env:"SESSION_SECRET"`

	// In-memory store lifecycle
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// Token inspection; when empty tokens are only checked for expiry.
	JWTSecretKey string `env:"JWT_SECRET_KEY"`

	// Audit trail of session events, written only with a Redis client available.
	AuditStream    string `env:"SESSION_AUDIT_STREAM" envDefault:"workly:session:events"`
	AuditMaxLength int64  `env:"SESSION_AUDIT_MAX_LENGTH" envDefault:"10000"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load session configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the storage driver and checks durations.
func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageMemory, StorageFile, StorageRedis, StorageMongo:
	default:
		return fmt.Errorf("session_storage must be one of 'memory', 'file', 'redis' or 'mongo', got %q", c.Storage)
	}
	if c.Storage == StorageFile && c.FileDir == "" {
		return errors.New("session_file_dir is required for the file storage")
	}
	if c.StorageKey == "" {
		return errors.New("session_storage_key cannot be empty")
	}
	if c.TTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("session_idle_timeout must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("session_sweep_interval must be positive")
	}
	return nil
}

// DefaultConfig returns an in-memory configuration, used by tests and local tools.
func DefaultConfig() *Config {
	return &Config{
		Storage:        StorageMemory,
		FileDir:        ".sessions",
		StorageKey:     "user",
		Collection:     "client_sessions",
		KeyPrefix:      "workly:session:",
		TTL:            7 * 24 * time.Hour,
		IdleTimeout:    30 * time.Minute,
		SweepInterval:  5 * time.Minute,
		AuditStream:    "workly:session:events",
		AuditMaxLength: 10000,
	}
}
