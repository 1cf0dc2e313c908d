package session

import (
	"context"
	"io"
	"testing"

	"workly-web/internal/session/adapter/persistence"
	"workly-web/internal/session/config"
	"workly-web/internal/session/domain/model"
	"workly-web/internal/shared/eventbus"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() Dependencies {
	log := logger.NewLoggerFromConfig(&logger.Config{Level: "error"}, io.Discard)
	return Dependencies{
		Bus:     eventbus.NewEventBus(log),
		Metrics: metrics.New(prometheus.NewRegistry()),
		Logger:  log,
	}
}

func TestNewStorage_Drivers(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	storage, err := NewStorage(ctx, cfg, testDeps())
	require.NoError(t, err)
	assert.IsType(t, &persistence.MemoryStorage{}, storage)

	cfg.Storage = config.StorageFile
	cfg.FileDir = t.TempDir()
	storage, err = NewStorage(ctx, cfg, testDeps())
	require.NoError(t, err)
	assert.IsType(t, &persistence.FileStorage{}, storage)

	cfg.Secret = "seal-me"
	storage, err = NewStorage(ctx, cfg, testDeps())
	require.NoError(t, err)
	assert.IsType(t, &persistence.SealedStorage{}, storage)
}

func TestNewStorage_MissingBackends(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Storage = config.StorageRedis
	_, err := NewStorage(ctx, cfg, testDeps())
	assert.Error(t, err)

	cfg.Storage = config.StorageMongo
	_, err = NewStorage(ctx, cfg, testDeps())
	assert.Error(t, err)
}

func TestSessionModule_CountsSessionEvents(t *testing.T) {
	ctx := context.Background()
	deps := testDeps()
	module, err := NewSessionModule(ctx, config.DefaultConfig(), deps)
	require.NoError(t, err)
	assert.Nil(t, module.Audit())

	store, err := module.Manager().Store(ctx, "client-1")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, &model.Session{ID: "user-1"}))
	require.NoError(t, store.Set(ctx, nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(deps.Metrics.SessionEvents.WithLabelValues(eventbus.EventTypeUserAuthenticated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(deps.Metrics.SessionEvents.WithLabelValues(eventbus.EventTypeUserLoggedOut)))
}

func TestSessionModule_StartStop(t *testing.T) {
	deps := testDeps()
	module, err := NewSessionModule(context.Background(), config.DefaultConfig(), deps)
	require.NoError(t, err)
	require.Equal(t, 1, deps.Bus.GetSubscriberCount(eventbus.EventTypeUserAuthenticated))

	module.Start(context.Background())
	assert.NoError(t, module.Stop())

	for _, eventType := range eventbus.SessionEventTypes {
		assert.Zero(t, deps.Bus.GetSubscriberCount(eventType), eventType)
	}
}
