package repository

import (
	"context"

	"workly-web/internal/shared/eventbus"
)

// SessionStorage persists serialized sessions by key. Load returns an error
// wrapping errors.ErrSessionNotFound when nothing is stored under key, and one
// wrapping errors.ErrSessionCorrupt when stored bytes cannot be recovered.
type SessionStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

// LogoutClient tells the Workly API that token is no longer in use.
type LogoutClient interface {
	Logout(ctx context.Context, token string) error
}

// TokenInspector decides whether a persisted token can still be trusted.
type TokenInspector interface {
	Validate(ctx context.Context, token string) error
}

// Navigator receives the destination after a session transition.
type Navigator interface {
	Push(path string)
}

// AuditStore keeps a durable trail of session lifecycle events.
type AuditStore interface {
	Append(ctx context.Context, event eventbus.Event) error
}
