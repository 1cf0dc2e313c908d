package repository

import (
	"context"

	"workly-web/internal/auth/domain/model"
	sessionmodel "workly-web/internal/session/domain/model"
)

// AuthAPI exchanges credentials with the Workly API. Only transport failures
// are returned as errors; rejections come back as an Exchange.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*model.Exchange, error)
	Signup(ctx context.Context, name, email, password string) (*model.Exchange, error)
}

// SessionWriter is the part of the session store the bridge mutates.
type SessionWriter interface {
	Set(ctx context.Context, session *sessionmodel.Session) error
}
