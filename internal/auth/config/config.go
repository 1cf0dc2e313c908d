package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the auth module.
type Config struct {
	// Credential cookie relayed from the Workly API to the browser.
	CookieName     string        `env:"AUTH_COOKIE_NAME" envDefault:"jwt"`
	CookiePath     string        `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool          `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string        `env:"COOKIE_SAME_SITE" envDefault:"Lax"`
	CookieMaxAge   time.Duration `env:"COOKIE_MAX_AGE" envDefault:"168h"`

	// Client context cookie keying persisted sessions.
	ClientCookieName   string        `env:"CLIENT_COOKIE_NAME" envDefault:"workly_cid"`
	ClientCookieMaxAge time.Duration `env:"CLIENT_COOKIE_MAX_AGE" envDefault:"8760h"`

	// Route protection
	ProtectedPrefixes []string `env:"PROTECTED_PREFIXES" envDefault:"/dashboard,/organizations,/profile" envSeparator:","`
	LandingPath       string   `env:"AUTH_LANDING_PATH" envDefault:"/"`
	HomePath          string   `env:"AUTH_HOME_PATH" envDefault:"/organizations"`

	// Edge protection
	AllowedOrigins  string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	RateLimitMax    int           `env:"AUTH_RATE_LIMIT_MAX" envDefault:"10"`
	RateLimitWindow time.Duration `env:"AUTH_RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error() +
			". Please ensure all required environment variables are set.")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes cookie and path settings.
func (c *Config) Validate() error {
	if c.CookieName == "" {
		return errors.New("auth_cookie_name cannot be empty")
	}
	if c.ClientCookieName == "" {
		return errors.New("client_cookie_name cannot be empty")
	}
	if c.ClientCookieName == c.CookieName {
		return errors.New("client_cookie_name must differ from auth_cookie_name")
	}

	switch strings.ToLower(c.CookieSameSite) {
	case "lax":
		c.CookieSameSite = "Lax"
	case "strict":
		c.CookieSameSite = "Strict"
	case "none":
		c.CookieSameSite = "None"
	default:
		return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}
	if c.CookieSameSite == "None" && !c.CookieSecure {
		return errors.New("cookie_same_site 'None' requires cookie_secure")
	}

	prefixes := make([]string, 0, len(c.ProtectedPrefixes))
	for _, p := range c.ProtectedPrefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			return errors.New("protected_prefixes must be absolute paths, got " + p)
		}
		if p != "/" {
			p = strings.TrimRight(p, "/")
		}
		prefixes = append(prefixes, p)
	}
	c.ProtectedPrefixes = prefixes

	if !strings.HasPrefix(c.LandingPath, "/") || !strings.HasPrefix(c.HomePath, "/") {
		return errors.New("auth_landing_path and auth_home_path must be absolute paths")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("auth rate limit must be positive")
	}
	return nil
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() *Config {
	return &Config{
		CookieName:         "jwt",
		CookiePath:         "/",
		CookieHTTPOnly:     true,
		CookieSameSite:     "Lax",
		CookieMaxAge:       7 * 24 * time.Hour,
		ClientCookieName:   "workly_cid",
		ClientCookieMaxAge: 365 * 24 * time.Hour,
		ProtectedPrefixes:  []string{"/dashboard", "/organizations", "/profile"},
		LandingPath:        "/",
		HomePath:           "/organizations",
		AllowedOrigins:     "http://localhost:3000",
		RateLimitMax:       10,
		RateLimitWindow:    time.Minute,
	}
}
