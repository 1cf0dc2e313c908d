package errors

import (
	"errors"

	"workly-web/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// FiberErrorHandler renders errors returned by handlers as
// {type, message, code}, with an errors list for field validation failures.
// Unknown errors are logged and hidden behind a 500.
func FiberErrorHandler(log logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.HTTPCode >= fiber.StatusInternalServerError {
				log.WithContext(c.UserContext()).Errorf("HTTP error: %v", err)
			}
			body := fiber.Map{
				"type":    appErr.Type,
				"message": appErr.Message,
				"code":    appErr.Code,
			}
			if fields, ok := appErr.Details["validation_errors"]; ok {
				body["errors"] = fields
			}
			return c.Status(appErr.HTTPCode).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"type":    ErrorTypeFromStatus(fiberErr.Code),
				"message": fiberErr.Message,
			})
		}

		log.WithContext(c.UserContext()).Errorf("HTTP error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"type":    ErrorTypeInternal,
			"message": "Internal Server Error",
		})
	}
}

// ErrorTypeFromStatus returns the error type FromStatus would assign.
func ErrorTypeFromStatus(status int) ErrorType {
	return FromStatus(status, "").Type
}
