package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// inboundIDHeaders are the headers an incoming request may carry its id in,
// checked in order. SAP middleware layers commonly send correlation ids under
// their own header names.
var inboundIDHeaders = []string{
	RequestIDHeader,
	"X-Correlation-ID",
	"X-SAP-Request-ID",
}

// RequestID is a reusable middleware that ensures every request has a request ID.
//
// Behavior:
// - Reads the first non-empty id among X-Request-ID, X-Correlation-ID and X-SAP-Request-ID.
// - If missing, generates a new UUID.
// - Stores the value in Fiber context locals under RequestIDLocalKey.
// - Adds X-Request-ID to the response header with the same value.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		for _, h := range inboundIDHeaders {
			if v := c.Get(h); v != "" {
				id = v
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		// Store in context for downstream handlers/middlewares
		c.Locals(RequestIDLocalKey, id)

		// Ensure the response carries the request ID
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
