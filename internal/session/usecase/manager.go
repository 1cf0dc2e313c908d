package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"

	"go.uber.org/zap"
)

var ErrMissingClientID = errors.New("client id is required")

// Manager holds one Store per client context. It is created once at startup
// and handed to every module that needs sessions.
type Manager struct {
	mu         sync.Mutex
	stores     map[string]*Store
	storageKey string
	deps       StoreDeps
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewManager creates an empty manager.
func NewManager(storageKey string, deps StoreDeps, m *metrics.Metrics) *Manager {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Manager{
		stores:     make(map[string]*Store),
		storageKey: storageKey,
		deps:       deps,
		metrics:    m,
		logger:     deps.Logger.WithComponent("session_manager"),
	}
}

// Store returns the store of clientID, creating and restoring it on first use.
// The restore outlives the request's cancellation. When storage is down the
// Unknown store is returned but not kept, so the next request restores again.
func (m *Manager) Store(ctx context.Context, clientID string) (*Store, error) {
	if clientID == "" {
		return nil, ErrMissingClientID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[clientID]; ok {
		return store, nil
	}

	store := NewStore(clientID, m.storageKey, m.deps)
	if err := store.restore(context.WithoutCancel(ctx)); err != nil {
		m.logger.WithContext(ctx).WithFields(logger.ZapFields(
			zap.String("client_id", clientID),
			zap.Error(err),
		)).Warn("Session storage unavailable, store not cached")
		return store, nil
	}
	m.stores[clientID] = store
	m.metrics.SetActiveStores(len(m.stores))

	m.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"client_id": clientID,
		"state":     store.Get().State.String(),
	}).Debug("Session store created")
	return store, nil
}

// Sweep drops in-memory stores unused for longer than idle and returns how
// many were dropped. Persisted records are kept and restored on next use.
func (m *Manager) Sweep(idle time.Duration) int {
	now := m.deps.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for clientID, store := range m.stores {
		if store.idleSince(now) > idle {
			delete(m.stores, clientID)
			dropped++
		}
	}
	m.metrics.SetActiveStores(len(m.stores))

	if dropped > 0 {
		m.logger.Debugf("Swept %d idle session stores", dropped)
	}
	return dropped
}

// Len returns the number of stores held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// RunSweeper sweeps every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(idle)
		}
	}
}
