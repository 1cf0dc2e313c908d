package http

import (
	"regexp"
	"strings"
	"time"

	"workly-web/internal/auth/config"
	"workly-web/internal/auth/usecase"
	"workly-web/internal/shared/contextkeys"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"
	"workly-web/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

// clientIDPattern matches ids produced by nanoid.Standard(21).
var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{21}$`)

// AuthMiddleware provides the request pipeline pieces owned by the auth module.
type AuthMiddleware struct {
	cfg     *config.Config
	policy  usecase.Policy
	newID   func() string
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(cfg *config.Config, m *metrics.Metrics, log logger.Logger) (*AuthMiddleware, error) {
	if log == nil {
		log = logger.Default()
	}
	newID, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{
		cfg: cfg,
		policy: usecase.Policy{
			ProtectedPrefixes: cfg.ProtectedPrefixes,
			LandingPath:       cfg.LandingPath,
			HomePath:          cfg.HomePath,
		},
		newID:   newID,
		metrics: m,
		logger:  log.WithComponent("auth_middleware"),
	}, nil
}

// Policy returns the route protection policy derived from the config.
func (m *AuthMiddleware) Policy() usecase.Policy {
	return m.policy
}

// CORS middleware with credentials enabled for the configured origins
func (m *AuthMiddleware) CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     m.cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Requested-With,X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if m.cfg.CookieSecure {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	}
}

// RateLimiter limits credential exchanges per client address.
func (m *AuthMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               m.cfg.RateLimitMax,
		Expiration:        m.cfg.RateLimitWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		Generator:  uuid.NewString,
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// ClientContext identifies the browser by its client cookie, issuing one on
// first visit, and copies the request identity into the user context.
func (m *AuthMiddleware) ClientContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := c.Cookies(m.cfg.ClientCookieName)
		if !clientIDPattern.MatchString(clientID) {
			clientID = m.newID()
			c.Cookie(&fiber.Cookie{
				Name:     m.cfg.ClientCookieName,
				Value:    clientID,
				Path:     "/",
				Domain:   m.cfg.CookieDomain,
				MaxAge:   int(m.cfg.ClientCookieMaxAge.Seconds()),
				Expires:  time.Now().Add(m.cfg.ClientCookieMaxAge),
				Secure:   m.cfg.CookieSecure,
				HTTPOnly: true,
				SameSite: m.cfg.CookieSameSite,
			})
		}

		ctx := utils.WithClientID(c.UserContext(), clientID)
		if rid, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && rid != "" {
			ctx = utils.WithRequestID(ctx, rid)
		}
		if token := c.Cookies(m.cfg.CookieName); token != "" {
			ctx = utils.WithToken(ctx, token)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RouteGuard redirects anonymous visitors away from protected pages and
// signed-in visitors away from the landing page. Only the presence of the
// credential cookie is checked; the API remains the authority on its value.
//
// Only GET and HEAD page requests are guarded. Form posts and other mutations
// pass through, and the workspace handlers answer them with 401 and a redirect
// hint when no credential is present. /api/ paths are never guarded.
func (m *AuthMiddleware) RouteGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
			return c.Next()
		}
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}

		decision := usecase.Decide(m.policy, c.Path(), c.Cookies(m.cfg.CookieName) != "")
		m.metrics.ObserveGuard(decision.Action.String())

		if decision.Action == usecase.ActionRedirect {
			m.logger.WithContext(c.UserContext()).WithFields(map[string]interface{}{
				"path":     c.Path(),
				"location": decision.Location,
			}).Debug("Route guard redirect")
			return c.Redirect(decision.Location, fiber.StatusTemporaryRedirect)
		}
		return c.Next()
	}
}
