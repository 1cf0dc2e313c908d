package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrMissingUserID = errors.New("session has no user id")

// Session is the authenticated user of one client context plus the opaque
// bearer token issued by the Workly API.
type Session struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty" bson:"avatar_url,omitempty"`
	Token     string    `json:"token" bson:"token"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Validate reports whether s can be kept as the current session.
func (s *Session) Validate() error {
	if s == nil || s.ID == "" {
		return ErrMissingUserID
	}
	return nil
}

// Clone returns a copy that shares nothing with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Public returns a copy without the token, safe to render to the browser.
func (s *Session) Public() *Session {
	cp := s.Clone()
	if cp != nil {
		cp.Token = ""
	}
	return cp
}

// State is the lifecycle position of a client's session.
type State int

const (
	// StateUnknown means the persisted record has not been read yet.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent read of a Store.
type Snapshot struct {
	Session *Session `json:"user"`
	State   State    `json:"state"`
}

// Authenticated reports whether the snapshot carries a user.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Session != nil
}

// UserID returns the session user's id, or "".
func (s Snapshot) UserID() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.ID
}

// Token returns the session token, or "".
func (s Snapshot) Token() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Token
}

// Public returns the snapshot with the token stripped.
func (s Snapshot) Public() Snapshot {
	return Snapshot{Session: s.Session.Public(), State: s.State}
}
