package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "workly-web/internal/shared/errors"
)

// User facing messages
const (
	MsgInvalidResponse    = "Invalid response from server"
	MsgSomethingWentWrong = "Something went wrong"
	MsgInvalidRequestData = "Invalid request data. Please check your input and try again."
)

// APIError is a non-success answer from the Workly API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workly api: %d %s", e.Status, e.Message)
}

// envelope is the API's response wrapper: {status: "success", data} on
// success, {status: "error", message} on failure.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Decode turns a raw response into either out (the envelope's data) or an *APIError.
// An empty 2xx body (204 No Content) decodes to nothing.
func Decode(resp *Response, out interface{}) error {
	if resp.OK() && len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if !resp.IsJSON() {
		return &APIError{Status: resp.StatusCode, Message: MsgInvalidResponse}
	}

	if !resp.OK() {
		msg := resp.Message()
		if msg == "" {
			msg = MsgSomethingWentWrong
		}
		return newAPIError(resp.StatusCode, msg)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: MsgInvalidResponse}
	}
	if env.Status == "error" {
		msg := env.Message
		if msg == "" {
			msg = MsgSomethingWentWrong
		}
		return newAPIError(resp.StatusCode, msg)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: MsgInvalidResponse}
	}
	return nil
}

// newAPIError hides ORM validation details behind a generic message.
func newAPIError(status int, msg string) *APIError {
	if strings.Contains(strings.ToLower(msg), "prisma") {
		msg = MsgInvalidRequestData
	}
	return &APIError{Status: status, Message: msg}
}

// StatusOf returns the API status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the API rejected the credential cookie.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsUnavailable reports a transport failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, apperrors.ErrBackendUnavailable)
}

// ToAppError converts any client error into the shared AppError shape.
func ToAppError(err error) *apperrors.AppError {
	var apiErr *APIError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return apperrors.FromStatus(apiErr.Status, apiErr.Message).WithCause(err).WithComponent("apiclient")
	case IsUnavailable(err):
		return apperrors.NewUpstreamError(MsgSomethingWentWrong + ". Please try again.").WithCause(err).WithComponent("apiclient")
	default:
		return apperrors.WrapError(err, MsgSomethingWentWrong)
	}
}
