package http

import (
	"strings"

	"workly-web/internal/session/domain/repository"

	"github.com/gofiber/fiber/v2"
)

var _ repository.Navigator = (*Navigator)(nil)

// Navigator records the destination chosen by a use case so the handler can
// turn it into an HTTP answer once the use case returns.
type Navigator struct {
	target string
}

// NewNavigator creates a navigator with no destination.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Push records path as the destination. The last push wins.
func (n *Navigator) Push(path string) {
	n.target = path
}

// Target returns the recorded destination, or "".
func (n *Navigator) Target() string {
	return n.target
}

// Respond answers JSON clients with body plus a "redirect" field and browsers
// with 303 See Other. Without a destination body is sent as is.
func (n *Navigator) Respond(c *fiber.Ctx, status int, body fiber.Map) error {
	if WantsJSON(c) || n.target == "" {
		if body == nil {
			body = fiber.Map{}
		}
		if n.target != "" {
			body["redirect"] = n.target
		}
		return c.Status(status).JSON(body)
	}
	return c.Redirect(n.target, fiber.StatusSeeOther)
}

// WantsJSON reports whether the caller is a script rather than a browser form
// or navigation.
func WantsJSON(c *fiber.Ctx) bool {
	if c.Is("json") {
		return true
	}
	if c.Get(fiber.HeaderXRequestedWith) != "" {
		return true
	}
	accept := c.Get(fiber.HeaderAccept)
	return strings.Contains(accept, fiber.MIMEApplicationJSON) && !strings.Contains(accept, fiber.MIMETextHTML)
}
