package auth

import (
	"fmt"

	"workly-web/internal/auth/adapter/backend"
	authhttp "workly-web/internal/auth/adapter/http"
	"workly-web/internal/auth/config"
	"workly-web/internal/auth/usecase"
	sessionhttp "workly-web/internal/session/adapter/http"
	"workly-web/internal/shared/apiclient"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"

	"github.com/gofiber/fiber/v2"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	bridge     usecase.AuthBridgeInterface
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	cookie     sessionhttp.CredentialCookie
	config     *config.Config
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(api *apiclient.Client, cfg *config.Config, m *metrics.Metrics, log logger.Logger) (*AuthModule, error) {
	if api == nil {
		return nil, fmt.Errorf("auth module requires an API client")
	}
	if log == nil {
		log = logger.Default()
	}

	bridge := usecase.NewAuthBridge(backend.NewAuthAPIClient(api), cfg.HomePath, m, log)

	middleware, err := authhttp.NewAuthMiddleware(cfg, m, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}

	cookie := sessionhttp.CredentialCookie{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		MaxAge:   cfg.CookieMaxAge,
		Secure:   cfg.CookieSecure,
		HTTPOnly: cfg.CookieHTTPOnly,
		SameSite: cfg.CookieSameSite,
	}

	return &AuthModule{
		bridge:     bridge,
		handler:    authhttp.NewAuthHTTPHandler(bridge, cookie, cfg.LandingPath, cfg.HomePath, log),
		middleware: middleware,
		cookie:     cookie,
		config:     cfg,
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupAuthRoutesWithMiddleware(router, am.middleware)
}

// GetBridge returns the auth bridge for external access
func (am *AuthModule) GetBridge() usecase.AuthBridgeInterface {
	return am.bridge
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

// CredentialCookie returns the cookie settings shared with other modules that
// must clear the credential.
func (am *AuthModule) CredentialCookie() sessionhttp.CredentialCookie {
	return am.cookie
}

// Stop performs cleanup when the module is shut down
func (am *AuthModule) Stop() error {
	return nil
}
