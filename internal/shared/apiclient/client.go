package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/metrics"
	"workly-web/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Config describes how to reach the Workly API.
type Config struct {
	BaseURL    string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	Timeout    time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	CookieName string        `env:"AUTH_COOKIE_NAME" envDefault:"jwt"`
}

// Request is one call to the Workly API. Token, when set, is sent as the
// credential cookie the API expects.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Token  string
}

// Response is the raw outcome of a call that reached the API.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Cookies     map[string]string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the API answered with a JSON body.
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), fiber.MIMEApplicationJSON)
}

// Message returns the top level "message" field of a JSON body, or "".
func (r *Response) Message() string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	return body.Message
}

// Client performs JSON calls against the Workly API using fiber's fasthttp agent.
type Client struct {
	baseURL    string
	timeout    time.Duration
	cookieName string
	log        logger.Logger
	metrics    *metrics.Metrics
}

// New creates a client. A nil logger falls back to the default logger.
func New(cfg Config, log logger.Logger, m *metrics.Metrics) *Client {
	if log == nil {
		log = logger.Default()
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "jwt"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		cookieName: cookieName,
		log:        log.WithComponent("apiclient"),
		metrics:    m,
	}
}

// CookieName is the name of the credential cookie exchanged with the API.
func (c *Client) CookieName() string {
	return c.cookieName
}

// Do sends r and returns whatever the API answered. Only transport failures
// (unreachable host, timeout, cancelled ctx) are returned as errors; they wrap
// errors.ErrBackendUnavailable.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	timeout, err := c.timeoutFor(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrBackendUnavailable, r.Method, r.Path, err)
	}

	var payload []byte
	if r.Body != nil {
		payload, err = json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", r.Method, r.Path, err)
		}
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(r.Method)
	req.SetRequestURI(c.url(r.Path, r.Query))
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if r.Token != "" {
		req.Header.SetCookie(c.cookieName, r.Token)
	}
	if rid, err := utils.GetRequestIDFromContext(ctx); err == nil && rid != "" {
		req.Header.Set(fiber.HeaderXRequestID, rid)
	}
	if payload != nil {
		req.Header.SetContentType(fiber.MIMEApplicationJSON)
		req.SetBody(payload)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrBackendUnavailable, r.Method, r.Path, err)
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	start := time.Now()
	code, body, errs := a.Bytes()
	elapsed := time.Since(start)

	if len(errs) > 0 {
		c.metrics.ObserveBackend(r.Method, 0, elapsed)
		c.log.WithContext(ctx).WithFields(logger.ZapFields(
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Error(errs[0]),
		)).Warn("Workly API unreachable")
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrBackendUnavailable, r.Method, r.Path, errs[0])
	}

	c.metrics.ObserveBackend(r.Method, code, elapsed)
	c.log.WithContext(ctx).WithFields(logger.ZapFields(
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", code),
		zap.Duration("elapsed", elapsed),
	)).Debug("Workly API call")

	return &Response{
		StatusCode:  code,
		ContentType: string(resp.Header.ContentType()),
		Body:        body,
		Cookies:     responseCookies(&resp.Header),
	}, nil
}

// Call sends r and decodes the success envelope's data into out (which may be nil).
func (c *Client) Call(ctx context.Context, r Request, out interface{}) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	return Decode(resp, out)
}

// Get is a shorthand for Call with GET.
func (c *Client) Get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	return c.Call(ctx, Request{Method: fiber.MethodGet, Path: path, Query: query, Token: token}, out)
}

// Post is a shorthand for Call with POST.
func (c *Client) Post(ctx context.Context, token, path string, body, out interface{}) error {
	return c.Call(ctx, Request{Method: fiber.MethodPost, Path: path, Body: body, Token: token}, out)
}

// Patch is a shorthand for Call with PATCH.
func (c *Client) Patch(ctx context.Context, token, path string, body, out interface{}) error {
	return c.Call(ctx, Request{Method: fiber.MethodPatch, Path: path, Body: body, Token: token}, out)
}

// Delete is a shorthand for Call with DELETE.
func (c *Client) Delete(ctx context.Context, token, path string, out interface{}) error {
	return c.Call(ctx, Request{Method: fiber.MethodDelete, Path: path, Token: token}, out)
}

func (c *Client) url(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// timeoutFor returns the effective per-call timeout: the configured timeout,
// shortened by the ctx deadline when that is sooner.
func (c *Client) timeoutFor(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout, nil
}

func responseCookies(h *fasthttp.ResponseHeader) map[string]string {
	cookies := make(map[string]string)
	h.VisitAllCookie(func(key, value []byte) {
		ck := fasthttp.AcquireCookie()
		defer fasthttp.ReleaseCookie(ck)
		if err := ck.ParseBytes(value); err != nil {
			return
		}
		cookies[string(bytes.TrimSpace(ck.Key()))] = string(ck.Value())
	})
	return cookies
}
