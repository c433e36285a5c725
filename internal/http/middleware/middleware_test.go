package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		// Check if it's readable in handler (from response body)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))
	})

	t.Run("should accept SAP correlation headers", func(t *testing.T) {
		for _, header := range []string{"X-Correlation-ID", "X-SAP-Request-ID"} {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(header, "sap-id-42")

			resp, _ := app.Test(req)

			assert.Equal(t, "sap-id-42", resp.Header.Get(RequestIDHeader), header)
		}
	})

	t.Run("X-Request-ID wins over correlation headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "primary")
		req.Header.Set("X-Correlation-ID", "secondary")

		resp, _ := app.Test(req)

		assert.Equal(t, "primary", resp.Header.Get(RequestIDHeader))
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	// Logger usually depends on RequestID for request_id field
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	// Verify log output
	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func TestSapTrace(t *testing.T) {
	newApp := func(buf *bytes.Buffer, opts TraceOptions) *fiber.App {
		app := fiber.New()
		app.Use(RequestID())
		app.Use(SapTraceWithWriter(buf, opts))
		app.All("/ContentServer/ContentServer.dll", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		app.Get("/sap/content/:documentId", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	t.Run("traces the legacy endpoint", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp(&buf, TraceOptions{})

		req := httptest.NewRequest("GET", "/ContentServer/ContentServer.dll?cmd=get&docId=doc-1", nil)
		app.Test(req)

		var line map[string]any
		assert.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "[SAP-TRACE]", line["tag"])
		assert.Equal(t, "GET", line["method"])
		assert.Contains(t, line["query"], "docId=doc-1")
	})

	t.Run("redacts secrets from the traced query", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp(&buf, TraceOptions{})

		req := httptest.NewRequest("GET", "/ContentServer/ContentServer.dll?docId=doc-1&secKey=SUPERSECRETVALUE", nil)
		app.Test(req)

		out := buf.String()
		assert.NotContains(t, out, "SUPERSECRETVALUE")
		assert.Contains(t, out, "[REDACTED:")
	})

	t.Run("skips unrelated paths by default", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp(&buf, TraceOptions{})

		req := httptest.NewRequest("GET", "/sap/content/doc-1", nil)
		app.Test(req)

		assert.Zero(t, buf.Len())
	})

	t.Run("user agent match traces other paths", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp(&buf, TraceOptions{UserAgentMatch: "SAP NetWeaver Application Server"})

		req := httptest.NewRequest("GET", "/sap/content/doc-1", nil)
		req.Header.Set(fiber.HeaderUserAgent, "SAP NetWeaver Application Server (7.54)")
		app.Test(req)

		assert.True(t, strings.Contains(buf.String(), "[SAP-TRACE]"))
	})

	t.Run("all requests mode", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp(&buf, TraceOptions{AllRequests: true})

		req := httptest.NewRequest("GET", "/sap/content/doc-1", nil)
		app.Test(req)

		assert.True(t, strings.Contains(buf.String(), "[SAP-TRACE]"))
	})
}
