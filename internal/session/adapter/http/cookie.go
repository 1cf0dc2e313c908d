package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CredentialCookie describes the browser cookie carrying the API token.
type CredentialCookie struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   time.Duration
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// Set writes token to the browser.
func (cc CredentialCookie) Set(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cc.Name,
		Value:    token,
		Path:     cc.Path,
		Domain:   cc.Domain,
		MaxAge:   int(cc.MaxAge.Seconds()),
		Secure:   cc.Secure,
		HTTPOnly: cc.HTTPOnly,
		SameSite: cc.SameSite,
		Expires:  time.Now().Add(cc.MaxAge),
	})
}

// Clear expires the cookie in the browser.
func (cc CredentialCookie) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     cc.Name,
		Value:    "",
		Path:     cc.Path,
		Domain:   cc.Domain,
		MaxAge:   -1,
		Secure:   cc.Secure,
		HTTPOnly: cc.HTTPOnly,
		SameSite: cc.SameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// Present reports whether the request carries the cookie.
func (cc CredentialCookie) Present(c *fiber.Ctx) bool {
	return c.Cookies(cc.Name) != ""
}
