package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sapcs/internal/apperr"
	"sapcs/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// ErrorHandler returns a Fiber global error handler mapping the apperr
// taxonomy onto HTTP statuses. Validation and configuration messages are safe
// to echo back; upstream and unknown errors are reduced to generic responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		switch {
		case apperr.IsValidation(err):
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case apperr.IsConfiguration(err):
			return writeError(c, fiber.StatusUnprocessableEntity, "CONFIGURATION_ERROR", err.Error())
		case errors.Is(err, apperr.ErrNotFound):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
		}

		var upstream *apperr.UpstreamError
		if errors.As(err, &upstream) {
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "upstream dependency failed")
		}

		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			// Body-limit rejections keep their own message so callers can size down.
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body exceeds the configured upload limit")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
