package session

import (
	"context"
	"fmt"
	"sync"

	"workly-web/internal/session/adapter/backend"
	sessionhttp "workly-web/internal/session/adapter/http"
	"workly-web/internal/session/adapter/persistence"
	"workly-web/internal/session/adapter/security"
	"workly-web/internal/session/config"
	"workly-web/internal/session/domain/repository"
	"workly-web/internal/session/usecase"
	"workly-web/internal/shared/apiclient"
	"workly-web/internal/shared/eventbus"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies are the shared resources the session module is built from.
// Redis and Mongo are only required by the matching storage drivers.
type Dependencies struct {
	API     *apiclient.Client
	Redis   *redis.Client
	Mongo   *mongo.Database
	Bus     eventbus.EventBusInterface
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// SessionModule owns the session Manager and its background sweeper.
type SessionModule struct {
	config  *config.Config
	storage repository.SessionStorage
	manager *usecase.Manager
	audit   *persistence.RedisAuditStore
	bus     eventbus.EventBusInterface
	logger  logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSessionModule creates a new session module instance
func NewSessionModule(ctx context.Context, cfg *config.Config, deps Dependencies) (*SessionModule, error) {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	log := deps.Logger.WithComponent("session")

	storage, err := NewStorage(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	var logoutClient repository.LogoutClient
	if deps.API != nil {
		logoutClient = backend.NewLogoutClient(deps.API)
	}

	manager := usecase.NewManager(cfg.StorageKey, usecase.StoreDeps{
		Storage:   storage,
		Inspector: security.NewJWTInspector(cfg.JWTSecretKey),
		Logout:    logoutClient,
		Bus:       deps.Bus,
		Logger:    deps.Logger,
	}, deps.Metrics)

	module := &SessionModule{
		config:  cfg,
		storage: storage,
		manager: manager,
		bus:     deps.Bus,
		logger:  log,
	}

	if deps.Bus != nil {
		if deps.Metrics != nil {
			for _, eventType := range eventbus.SessionEventTypes {
				deps.Bus.Subscribe(eventType, func(ctx context.Context, event eventbus.Event) error {
					deps.Metrics.ObserveSessionEvent(event.Type())
					return nil
				})
			}
		}
		if deps.Redis != nil && cfg.AuditStream != "" {
			module.audit = persistence.NewRedisAuditStore(deps.Redis, cfg.AuditStream, cfg.AuditMaxLength, deps.Logger)
			module.audit.Subscribe(deps.Bus)
		}
	}

	handlers := 0
	if deps.Bus != nil {
		handlers = deps.Bus.GetSubscriberCount(eventbus.EventTypeUserAuthenticated)
	}
	log.WithFields(map[string]interface{}{
		"storage":        cfg.Storage,
		"sealed":         cfg.Secret != "",
		"audit":          module.audit != nil,
		"event_handlers": handlers,
	}).Info("Session module initialized")

	return module, nil
}

// NewStorage builds the configured storage driver, sealed when a secret is set.
func NewStorage(ctx context.Context, cfg *config.Config, deps Dependencies) (repository.SessionStorage, error) {
	var storage repository.SessionStorage

	switch cfg.Storage {
	case config.StorageMemory:
		storage = persistence.NewMemoryStorage()
	case config.StorageFile:
		fs, err := persistence.NewFileStorage(cfg.FileDir, deps.Logger)
		if err != nil {
			return nil, err
		}
		storage = fs
	case config.StorageRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("session storage %q requires a Redis client", cfg.Storage)
		}
		storage = persistence.NewRedisStorage(deps.Redis, cfg.KeyPrefix, cfg.TTL, deps.Logger)
	case config.StorageMongo:
		if deps.Mongo == nil {
			return nil, fmt.Errorf("session storage %q requires a MongoDB database", cfg.Storage)
		}
		ms, err := persistence.NewMongoStorage(ctx, deps.Mongo, cfg.Collection, cfg.TTL, deps.Logger)
		if err != nil {
			return nil, err
		}
		storage = ms
	default:
		return nil, fmt.Errorf("unknown session storage %q", cfg.Storage)
	}

	if cfg.Secret != "" {
		sealed, err := persistence.NewSealedStorage(storage, cfg.Secret)
		if err != nil {
			return nil, err
		}
		storage = sealed
	}
	return storage, nil
}

// Manager returns the per-client store manager.
func (sm *SessionModule) Manager() *usecase.Manager {
	return sm.manager
}

// Middleware returns the middleware attaching each request's store.
func (sm *SessionModule) Middleware() *sessionhttp.SessionMiddleware {
	return sessionhttp.NewSessionMiddleware(sm.manager)
}

// RegisterRoutes registers the session event history when auditing is on.
func (sm *SessionModule) RegisterRoutes(router fiber.Router) {
	if sm.audit == nil {
		return
	}
	router.Get("/auth/session/events", sessionhttp.NewEventsHandler(sm.audit).RecentEvents)
}

// Audit returns the audit store, or nil when no Redis client was configured.
func (sm *SessionModule) Audit() *persistence.RedisAuditStore {
	return sm.audit
}

// Start launches the idle store sweeper.
func (sm *SessionModule) Start(ctx context.Context) {
	ctx, sm.cancel = context.WithCancel(ctx)
	sm.wg.Add(1)
	go func() {
		defer sm.wg.Done()
		sm.manager.RunSweeper(ctx, sm.config.SweepInterval, sm.config.IdleTimeout)
	}()
}

// Stop performs cleanup when the module is shut down
func (sm *SessionModule) Stop() error {
	if sm.cancel != nil {
		sm.cancel()
	}
	sm.wg.Wait()
	if sm.bus != nil {
		for _, eventType := range eventbus.SessionEventTypes {
			sm.bus.Unsubscribe(eventType)
		}
	}
	sm.logger.Info("Session module stopped")
	return nil
}
