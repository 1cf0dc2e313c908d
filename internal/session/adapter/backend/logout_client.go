package backend

import (
	"context"
	"fmt"

	"workly-web/internal/session/domain/repository"
	"workly-web/internal/shared/apiclient"

	"github.com/gofiber/fiber/v2"
)

var _ repository.LogoutClient = (*LogoutClient)(nil)

// LogoutClient calls GET /auth/logout on the Workly API.
type LogoutClient struct {
	api *apiclient.Client
}

// NewLogoutClient creates a logout client on top of api.
func NewLogoutClient(api *apiclient.Client) *LogoutClient {
	return &LogoutClient{api: api}
}

// Logout sends token as the credential cookie. Any transport failure or
// non-2xx answer is returned as an error.
func (c *LogoutClient) Logout(ctx context.Context, token string) error {
	resp, err := c.api.Do(ctx, apiclient.Request{
		Method: fiber.MethodGet,
		Path:   "/auth/logout",
		Token:  token,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("logout rejected: %w", &apiclient.APIError{Status: resp.StatusCode, Message: resp.Message()})
	}
	return nil
}
