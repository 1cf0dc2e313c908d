package di

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"workly-web/internal/auth"
	authconfig "workly-web/internal/auth/config"
	"workly-web/internal/session"
	sessionconfig "workly-web/internal/session/config"
	"workly-web/internal/shared/apiclient"
	"workly-web/internal/shared/database"
	"workly-web/internal/shared/eventbus"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"
	"workly-web/internal/workspace"
	workspaceconfig "workly-web/internal/workspace/config"

	"github.com/caarlos0/env/v6"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config gathers the configuration of every module and connection.
type Config struct {
	API       apiclient.Config
	Redis     sessionconfig.RedisConfig
	Mongo     database.MongoConfig
	Session   *sessionconfig.Config
	Auth      *authconfig.Config
	Workspace *workspaceconfig.Config

	// RedisEnabled connects Redis for the session audit stream even when
	// sessions are stored elsewhere.
	RedisEnabled bool `env:"REDIS_ENABLED" envDefault:"false"`
}

// LoadConfig loads every configuration section from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	var err error
	if cfg.Session, err = sessionconfig.LoadConfig(); err != nil {
		return nil, err
	}
	if cfg.Auth, err = authconfig.LoadConfig(); err != nil {
		return nil, err
	}
	if cfg.Workspace, err = workspaceconfig.LoadConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Container owns the shared connections and the modules built on them, and
// shuts them down in reverse order.
type Container struct {
	mu sync.RWMutex

	// Shared components
	Logger  logger.Logger
	Metrics *metrics.Metrics
	Bus     *eventbus.EventBus
	API     *apiclient.Client

	// Connections, nil when not configured
	Redis *redis.Client
	Mongo *database.Mongo

	// Module instances
	SessionModule   *session.SessionModule
	AuthModule      *auth.AuthModule
	WorkspaceModule *workspace.WorkspaceModule
}

// NewContainer creates an empty container.
func NewContainer(log logger.Logger, m *metrics.Metrics) *Container {
	if log == nil {
		log = logger.Default()
	}
	return &Container{
		Logger:  log,
		Metrics: m,
		Bus:     eventbus.NewEventBus(log),
	}
}

// InitializeInfrastructure creates the API client and dials the databases the
// configuration needs.
func (c *Container) InitializeInfrastructure(ctx context.Context, cfg *Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.API = apiclient.New(cfg.API, c.Logger, c.Metrics)

	redisRequired := cfg.Session.Storage == sessionconfig.StorageRedis
	if redisRequired || cfg.RedisEnabled {
		client := sessionconfig.NewRedisClient(&cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		switch {
		case err == nil:
			c.Redis = client
			c.Logger.WithFields(map[string]interface{}{"addr": cfg.Redis.GetAddr()}).Info("Connected to Redis")
		case redisRequired:
			_ = client.Close()
			return fmt.Errorf("failed to connect to Redis: %w", err)
		default:
			_ = client.Close()
			c.Logger.WithFields(logger.ZapFields(zap.Error(err))).Warn("Redis unreachable, session audit disabled")
		}
	}

	if cfg.Session.Storage == sessionconfig.StorageMongo {
		m, err := database.Connect(ctx, &cfg.Mongo, c.Logger)
		if err != nil {
			return err
		}
		c.Mongo = m
	}
	return nil
}

// InitializeModules builds the session, auth and workspace modules. The
// session sweeper is started with ctx.
func (c *Container) InitializeModules(ctx context.Context, cfg *Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.API == nil {
		return errors.New("infrastructure must be initialized before modules")
	}

	deps := session.Dependencies{
		API:     c.API,
		Redis:   c.Redis,
		Bus:     c.Bus,
		Metrics: c.Metrics,
		Logger:  c.Logger,
	}
	if c.Mongo != nil {
		deps.Mongo = c.Mongo.Database()
	}
	sessionModule, err := session.NewSessionModule(ctx, cfg.Session, deps)
	if err != nil {
		return fmt.Errorf("failed to create session module: %w", err)
	}
	sessionModule.Start(ctx)
	c.SessionModule = sessionModule

	authModule, err := auth.NewAuthModule(c.API, cfg.Auth, c.Metrics, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = authModule

	workspaceModule, err := workspace.NewWorkspaceModule(c.API, cfg.Workspace, authModule.CredentialCookie(), cfg.Auth.LandingPath, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create workspace module: %w", err)
	}
	c.WorkspaceModule = workspaceModule
	return nil
}

// HealthCheck pings the connections in use.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Mongo != nil {
		if err := c.Mongo.Ping(ctx); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup stops the modules and closes the connections.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.WorkspaceModule = nil
	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, err)
		}
		c.AuthModule = nil
	}
	if c.SessionModule != nil {
		if err := c.SessionModule.Stop(); err != nil {
			errs = append(errs, err)
		}
		c.SessionModule = nil
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
		c.Redis = nil
	}
	if c.Mongo != nil {
		if err := c.Mongo.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		c.Mongo = nil
	}

	return errors.Join(errs...)
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.WithFields(logger.ZapFields(zap.Error(err))).Warn("Cleanup errors occurred")
		return err
	}
	c.Logger.Info("Container resources closed")
	return nil
}
