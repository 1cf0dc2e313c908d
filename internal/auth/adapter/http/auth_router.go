package http

import (
	"net/url"

	"workly-web/internal/auth/domain/model"
	"workly-web/internal/auth/usecase"
	sessionhttp "workly-web/internal/session/adapter/http"
	sessionmodel "workly-web/internal/session/domain/model"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	bridge      usecase.AuthBridgeInterface
	cookie      sessionhttp.CredentialCookie
	landingPath string
	homePath    string
	logger      logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(
	bridge usecase.AuthBridgeInterface,
	cookie sessionhttp.CredentialCookie,
	landingPath, homePath string,
	log logger.Logger,
) *AuthHTTPHandler {
	if log == nil {
		log = logger.Default()
	}
	return &AuthHTTPHandler{
		bridge:      bridge,
		cookie:      cookie,
		landingPath: landingPath,
		homePath:    homePath,
		logger:      log.WithComponent("auth_http"),
	}
}

// SetupAuthRoutesWithMiddleware sets up the landing page and the credential
// endpoints. The session middleware must already run for these routes.
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) {
	router.Get(h.landingPath, h.Landing)

	auth := router.Group("/auth")
	auth.Post("/login", middleware.RateLimiter(), h.Login)
	auth.Post("/signup", middleware.RateLimiter(), h.Signup)
	auth.Get("/logout", h.Logout)
	auth.Get("/session", h.Session)
}

// Landing renders the login view model, or forwards an authenticated client
// to its callback destination.
func (h *AuthHTTPHandler) Landing(c *fiber.Ctx) error {
	store := sessionhttp.CurrentStore(c)
	if store == nil {
		return errNoStore()
	}

	callback := usecase.SafeCallback(c.Query("callbackUrl"), "")
	if store.Get().Authenticated() {
		if h.cookie.Present(c) {
			nav := sessionhttp.NewNavigator()
			nav.Push(usecase.SafeCallback(callback, h.homePath))
			return nav.Respond(c, fiber.StatusOK, fiber.Map{"success": true})
		}
		// The guard sends cookieless requests here, so forwarding would loop.
		if err := store.Invalidate(c.UserContext(), sessionmodel.ReasonNoCredential); err != nil {
			h.logger.WithContext(c.UserContext()).WithFields(logger.ZapFields(zap.Error(err))).Warn("Failed to drop session without credential cookie")
		}
	}

	view := "login"
	if c.Query("view") == "signup" {
		view = "signup"
	}
	return c.JSON(fiber.Map{
		"view":        view,
		"callbackUrl": callback,
		"error":       c.Query("error"),
		"notice":      c.Query("notice"),
	})
}

// Login handles the login form
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	store := sessionhttp.CurrentStore(c)
	if store == nil {
		return errNoStore()
	}

	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}
	if req.CallbackURL == "" {
		req.CallbackURL = c.Query("callbackUrl")
	}

	nav := sessionhttp.NewNavigator()
	result := h.bridge.Login(c.UserContext(), store, req, nav)
	if !result.Success {
		if sessionhttp.WantsJSON(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(result)
		}
		return c.Redirect(h.landing("login", req.CallbackURL, "error", result.Message), fiber.StatusSeeOther)
	}

	h.setCookie(c, result.Session.Token)
	result.Session = result.Session.Public()
	if sessionhttp.WantsJSON(c) {
		return c.JSON(result)
	}
	return nav.Respond(c, fiber.StatusOK, nil)
}

// Signup handles the signup form. Registration and the automatic login are
// reported separately.
func (h *AuthHTTPHandler) Signup(c *fiber.Ctx) error {
	store := sessionhttp.CurrentStore(c)
	if store == nil {
		return errNoStore()
	}

	var req model.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}
	if req.CallbackURL == "" {
		req.CallbackURL = c.Query("callbackUrl")
	}

	nav := sessionhttp.NewNavigator()
	result := h.bridge.Signup(c.UserContext(), store, req, nav)
	jsonClient := sessionhttp.WantsJSON(c)

	switch result.Outcome() {
	case model.SignupLoggedIn:
		h.setCookie(c, result.Session.Token)
		result.Session = result.Session.Public()
		if jsonClient {
			return c.Status(fiber.StatusCreated).JSON(result)
		}
		return nav.Respond(c, fiber.StatusCreated, nil)

	case model.SignupRegisteredLoginRequired:
		if jsonClient {
			return c.Status(fiber.StatusCreated).JSON(result)
		}
		return c.Redirect(h.landing("login", req.CallbackURL, "notice", result.Message), fiber.StatusSeeOther)

	default:
		if jsonClient {
			return c.Status(fiber.StatusBadRequest).JSON(result)
		}
		return c.Redirect(h.landing("signup", req.CallbackURL, "error", result.Message), fiber.StatusSeeOther)
	}
}

// Logout handles user logout. It always succeeds locally.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	store := sessionhttp.CurrentStore(c)
	if store == nil {
		return errNoStore()
	}

	nav := sessionhttp.NewNavigator()
	store.Logout(c.UserContext(), nav)
	h.cookie.Clear(c)

	return nav.Respond(c, fiber.StatusOK, fiber.Map{"success": true})
}

// Session returns the client's session snapshot without the token.
func (h *AuthHTTPHandler) Session(c *fiber.Ctx) error {
	store := sessionhttp.CurrentStore(c)
	if store == nil {
		return errNoStore()
	}
	return c.JSON(store.Get().Public())
}

// Helper methods

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	if token == "" {
		h.logger.WithContext(c.UserContext()).Warn("Login succeeded without a token, cookie not set")
		return
	}
	h.cookie.Set(c, token)
}

// landing builds the landing URL that re-renders a form with a message.
func (h *AuthHTTPHandler) landing(view, callback, key, msg string) string {
	q := url.Values{}
	if view != "login" {
		q.Set("view", view)
	}
	if cb := usecase.SafeCallback(callback, ""); cb != "" {
		q.Set("callbackUrl", cb)
	}
	q.Set(key, msg)
	return h.landingPath + "?" + q.Encode()
}

func errNoStore() error {
	return apperrors.NewInternalError("session not loaded").WithComponent("auth_http")
}
