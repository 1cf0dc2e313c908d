package http

import (
	"workly-web/internal/session/usecase"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

const localStore = "workly.session.store"

// SessionMiddleware attaches the client's session store to each request.
type SessionMiddleware struct {
	manager *usecase.Manager
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(manager *usecase.Manager) *SessionMiddleware {
	return &SessionMiddleware{manager: manager}
}

// Load looks up (and on first use restores) the store of the request's client
// context. It must run after the client context middleware.
func (m *SessionMiddleware) Load() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		clientID, err := utils.GetClientIDFromContext(ctx)
		if err != nil {
			return apperrors.NewInternalError("client context missing").WithCause(err).WithComponent("session")
		}

		store, err := m.manager.Store(ctx, clientID)
		if err != nil {
			return apperrors.WrapError(err, "failed to load session")
		}
		c.Locals(localStore, store)

		if snap := store.Get(); snap.Authenticated() {
			ctx = utils.WithUserID(ctx, snap.Session.ID)
			c.SetUserContext(ctx)
		}
		return c.Next()
	}
}

// CurrentStore returns the store attached by Load, or nil.
func CurrentStore(c *fiber.Ctx) *usecase.Store {
	store, _ := c.Locals(localStore).(*usecase.Store)
	return store
}
