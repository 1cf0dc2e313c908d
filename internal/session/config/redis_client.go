package config

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for the Redis server backing session
// storage and the session audit stream.
type RedisConfig struct {
	Host            string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string        `env:"REDIS_PORT" envDefault:"6379"`
	Password        string        `env:"REDIS_PASSWORD"`
	Database        int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool          `env:"REDIS_TLS" envDefault:"false"`
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
}

// GetAddr returns host:port.
func (c *RedisConfig) GetAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewRedisClient creates a new Redis client using the provided configuration
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 30 * time.Minute
	}

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = time.Hour
	}

	options := &redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,

		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	if cfg.EnableTLS {
		options.TLSConfig = &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	return redis.NewClient(options)
}

// NewRedisClientWithDefaults creates a Redis client for localhost:6379.
// Useful for testing and development environments
func NewRedisClientWithDefaults() *redis.Client {
	return NewRedisClient(&RedisConfig{
		Host:         "localhost",
		Port:         "6379",
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}
