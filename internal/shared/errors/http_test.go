package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"workly-web/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiberErrorHandler(t *testing.T) {
	log := logger.NewLoggerFromConfig(&logger.Config{Level: "error"}, io.Discard)
	app := fiber.New(fiber.Config{ErrorHandler: FiberErrorHandler(log)})
	app.Get("/app", func(c *fiber.Ctx) error {
		return NewValidationError("bad input").WithCode("BAD_INPUT")
	})
	app.Get("/wrapped", func(c *fiber.Ctx) error {
		return fmt.Errorf("outer: %w", NewConflictError("taken"))
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return fmt.Errorf("boom")
	})

	tests := []struct {
		path       string
		wantStatus int
		wantType   ErrorType
		wantMsg    string
	}{
		{"/app", http.StatusBadRequest, ErrorTypeValidation, "bad input"},
		{"/wrapped", http.StatusConflict, ErrorTypeConflict, "taken"},
		{"/fiber", http.StatusNotFound, ErrorTypeNotFound, "Not Found"},
		{"/plain", http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, string(tt.wantType), body["type"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestFiberErrorHandler_ListsValidationFields(t *testing.T) {
	log := logger.NewLoggerFromConfig(&logger.Config{Level: "error"}, io.Discard)
	app := fiber.New(fiber.Config{ErrorHandler: FiberErrorHandler(log)})
	app.Get("/fields", func(c *fiber.Ctx) error {
		return NewValidationErrors().
			Add("sort", "unknown sort field", "assignee").
			Add("order", "order must be asc or desc", "up").
			ToAppError()
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fields", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Type   string            `json:"type"`
		Errors []ValidationError `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(ErrorTypeValidation), body.Type)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "sort", body.Errors[0].Field)
	assert.Equal(t, "up", body.Errors[1].Value)
}
