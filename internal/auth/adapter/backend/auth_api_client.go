package backend

import (
	"context"
	"encoding/json"
	"time"

	"workly-web/internal/auth/domain/model"
	"workly-web/internal/auth/domain/repository"
	sessionmodel "workly-web/internal/session/domain/model"
	"workly-web/internal/shared/apiclient"

	"github.com/gofiber/fiber/v2"
)

var _ repository.AuthAPI = (*AuthAPIClient)(nil)

// AuthAPIClient talks to the Workly API auth endpoints.
type AuthAPIClient struct {
	api *apiclient.Client
}

// NewAuthAPIClient creates an auth client on top of api.
func NewAuthAPIClient(api *apiclient.Client) *AuthAPIClient {
	return &AuthAPIClient{api: api}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPayload is the user object returned by the API, with the token it may carry.
type userPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// exchangeBody covers both answer shapes: {data: {user, token}} and {user, token}.
type exchangeBody struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *userPayload `json:"user"`
	Data    *struct {
		Token string       `json:"token"`
		User  *userPayload `json:"user"`
	} `json:"data"`
}

// Login posts the credentials to /auth/login.
func (c *AuthAPIClient) Login(ctx context.Context, email, password string) (*model.Exchange, error) {
	return c.exchange(ctx, "/auth/login", loginBody{Email: email, Password: password})
}

// Signup posts the registration to /auth/signup.
func (c *AuthAPIClient) Signup(ctx context.Context, name, email, password string) (*model.Exchange, error) {
	return c.exchange(ctx, "/auth/signup", signupBody{Name: name, Email: email, Password: password})
}

func (c *AuthAPIClient) exchange(ctx context.Context, path string, body interface{}) (*model.Exchange, error) {
	resp, err := c.api.Do(ctx, apiclient.Request{Method: fiber.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, err
	}

	ex := &model.Exchange{StatusCode: resp.StatusCode, JSON: resp.IsJSON()}
	if !ex.JSON {
		return ex, nil
	}

	var parsed exchangeBody
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		ex.JSON = false
		return ex, nil
	}
	ex.Message = parsed.Message
	ex.Session = toSession(parsed, resp.Cookies[c.api.CookieName()])
	return ex, nil
}

// toSession picks the user from data.user or user, and the token from the
// payload or, failing that, the credential cookie the API set.
func toSession(body exchangeBody, cookieToken string) *sessionmodel.Session {
	user := body.User
	token := body.Token
	if body.Data != nil {
		if body.Data.User != nil {
			user = body.Data.User
		}
		if body.Data.Token != "" {
			token = body.Data.Token
		}
	}
	if user == nil {
		return nil
	}
	if user.Token != "" {
		token = user.Token
	}
	if token == "" {
		token = cookieToken
	}

	return &sessionmodel.Session{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		Token:     token,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
