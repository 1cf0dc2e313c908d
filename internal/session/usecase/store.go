package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"workly-web/internal/session/domain/model"
	"workly-web/internal/session/domain/repository"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/eventbus"
	"workly-web/internal/shared/logger"

	"go.uber.org/zap"
)

const eventSource = "session"

// StoreDeps are the collaborators shared by every Store of a Manager.
type StoreDeps struct {
	Storage   repository.SessionStorage
	Inspector repository.TokenInspector
	Logout    repository.LogoutClient
	Bus       eventbus.EventBusInterface
	Logger    logger.Logger
	Now       func() time.Time
}

// Store owns the session of one client context. All mutation goes through
// Set; reads return snapshots.
type Store struct {
	mu         sync.Mutex
	clientID   string
	key        string
	session    *model.Session
	state      model.State
	lastAccess time.Time

	storage   repository.SessionStorage
	inspector repository.TokenInspector
	logout    repository.LogoutClient
	bus       eventbus.EventBusInterface
	logger    logger.Logger
	now       func() time.Time
}

// NewStore creates a store in state Unknown. Its record is persisted under
// "<storageKey>:<clientID>".
func NewStore(clientID, storageKey string, deps StoreDeps) *Store {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		clientID:   clientID,
		key:        storageKey + ":" + clientID,
		state:      model.StateUnknown,
		lastAccess: now(),
		storage:    deps.Storage,
		inspector:  deps.Inspector,
		logout:     deps.Logout,
		bus:        deps.Bus,
		logger:     log.WithComponent("session_store").WithFields(map[string]interface{}{"client_id": clientID}),
		now:        now,
	}
}

// ClientID returns the client context this store belongs to.
func (s *Store) ClientID() string {
	return s.clientID
}

// Key returns the persisted record key.
func (s *Store) Key() string {
	return s.key
}

// Restore reads the persisted record. It never fails: a missing, unreadable
// or untrusted record leaves the store Anonymous, and records that can never
// be trusted again are removed. A storage outage leaves the store Unknown.
func (s *Store) Restore(ctx context.Context) {
	_ = s.restore(ctx)
}

// restore is Restore reporting a storage outage, after which the store is
// still Unknown and the persisted record untouched.
func (s *Store) restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = model.StateUnknown
	s.lastAccess = s.now()

	session, reason, err := s.load(ctx)
	if err != nil {
		s.session = nil
		return err
	}
	if session == nil {
		s.session = nil
		s.state = model.StateAnonymous
		if reason != "" {
			if err := s.storage.Remove(ctx, s.key); err != nil {
				s.logger.WithFields(logger.ZapFields(zap.Error(err))).Warn("Failed to remove untrusted session record")
			}
			s.publish(ctx, eventbus.EventTypeSessionInvalidated, "", reason)
		}
		return nil
	}

	s.session = session
	s.state = model.StateAuthenticated
	s.publish(ctx, eventbus.EventTypeSessionRestored, session.ID, "")
	return nil
}

// load returns the persisted session, or nil plus the reason the record must
// be discarded ("" when there is nothing to discard). Storage outages are
// returned as errors.
func (s *Store) load(ctx context.Context) (*model.Session, string, error) {
	data, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return nil, "", nil
	case errors.Is(err, apperrors.ErrSessionCorrupt):
		s.logger.Debug("Persisted session cannot be unsealed")
		return nil, model.ReasonCorrupt, nil
	case err != nil:
		s.logger.WithFields(logger.ZapFields(zap.Error(err))).Warn("Failed to load persisted session")
		return nil, "", err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Debug("Persisted session is not valid JSON")
		return nil, model.ReasonCorrupt, nil
	}
	if err := session.Validate(); err != nil {
		return nil, model.ReasonCorrupt, nil
	}

	if s.inspector != nil {
		if err := s.inspector.Validate(ctx, session.Token); err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				return nil, model.ReasonTokenExpired, nil
			}
			return nil, model.ReasonTokenInvalid, nil
		}
	}
	return &session, "", nil
}

// Set replaces the current session; nil clears it. The in-memory value is
// replaced before persisting, so a storage error is returned with the new
// value already in effect.
func (s *Store) Set(ctx context.Context, session *model.Session) error {
	if session == nil {
		return s.clear(ctx, eventbus.EventTypeUserLoggedOut, model.ReasonLogout)
	}
	if err := session.Validate(); err != nil {
		return apperrors.NewValidationError("session requires a user id").WithCause(err).WithComponent("session")
	}

	s.mu.Lock()
	s.session = session.Clone()
	s.state = model.StateAuthenticated
	s.lastAccess = s.now()
	err := s.persist(ctx, s.session)
	s.mu.Unlock()

	s.publish(ctx, eventbus.EventTypeUserAuthenticated, session.ID, model.ReasonLogin)
	return err
}

// Invalidate clears the session because it is no longer trusted (for example
// the API answered 401).
func (s *Store) Invalidate(ctx context.Context, reason string) error {
	return s.clear(ctx, eventbus.EventTypeSessionInvalidated, reason)
}

func (s *Store) clear(ctx context.Context, eventType, reason string) error {
	s.mu.Lock()
	prev := s.session
	s.session = nil
	s.state = model.StateAnonymous
	s.lastAccess = s.now()
	err := s.persist(ctx, nil)
	s.mu.Unlock()

	if prev != nil {
		s.publish(ctx, eventType, prev.ID, reason)
	}
	return err
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context, session *model.Session) error {
	if session == nil {
		if err := s.storage.Remove(ctx, s.key); err != nil {
			s.logger.WithFields(logger.ZapFields(zap.Error(err))).Error("Failed to remove persisted session")
			return apperrors.NewInfrastructureError("failed to remove persisted session").WithCause(err).WithComponent("session")
		}
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session").WithCause(err).WithComponent("session")
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.WithFields(logger.ZapFields(zap.String("user_id", session.ID), zap.Error(err))).Error("Failed to persist session")
		return apperrors.NewInfrastructureError("failed to persist session").WithCause(err).WithComponent("session")
	}
	return nil
}

// Get returns a snapshot of the current session and state.
func (s *Store) Get() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAccess = s.now()
	return model.Snapshot{Session: s.session.Clone(), State: s.state}
}

// Logout tells the API the token is no longer used, clears the session and
// navigates to "/". The API call is best-effort and never prevents the local
// logout.
func (s *Store) Logout(ctx context.Context, nav repository.Navigator) {
	snap := s.Get()

	if s.logout != nil && snap.Session != nil {
		if err := s.logout.Logout(ctx, snap.Session.Token); err != nil {
			s.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.Error(err))).Warn("Backend logout failed, clearing local session anyway")
		}
	}

	if err := s.clear(ctx, eventbus.EventTypeUserLoggedOut, model.ReasonLogout); err != nil {
		s.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.Error(err))).Warn("Local session cleared but storage was not updated")
	}

	if nav != nil {
		nav.Push("/")
	}
}

// idleSince reports how long the store has not been used.
func (s *Store) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastAccess)
}

func (s *Store) publish(ctx context.Context, eventType, userID, reason string) {
	if s.bus == nil {
		return
	}
	event := eventbus.NewBasicEventWithSource(eventType, model.SessionEvent{
		ClientID: s.clientID,
		UserID:   userID,
		Reason:   reason,
	}, eventSource)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.WithFields(logger.ZapFields(zap.String("event_type", eventType), zap.Error(err))).Warn("Session event handler failed")
	}
}
