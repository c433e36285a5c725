package middleware

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"sapcs/internal/protocol"
)

// TraceOptions controls which requests the SAP trace middleware records.
type TraceOptions struct {
	// AllRequests traces every request regardless of origin.
	AllRequests bool
	// UserAgentMatch traces requests whose User-Agent contains this substring
	// (case-insensitive). Empty disables user-agent matching.
	UserAgentMatch string
}

// SapTrace logs a diagnostic line for legacy protocol traffic. Requests are
// traced when AllRequests is set, when the path targets the legacy endpoint,
// or when the User-Agent matches. Query values go through the redaction rules
// in the protocol package before they reach the log.
func SapTrace(opts TraceOptions) fiber.Handler {
	return SapTraceWithWriter(os.Stdout, opts)
}

// SapTraceWithWriter is SapTrace with an explicit sink, used by tests.
func SapTraceWithWriter(w io.Writer, opts TraceOptions) fiber.Handler {
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		if !shouldTrace(c, opts) {
			return c.Next()
		}

		query := make(map[string]string)
		c.Context().QueryArgs().VisitAll(func(key, value []byte) {
			query[string(key)] = string(value)
		})

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		_ = enc.Encode(map[string]any{
			"tag":           "[SAP-TRACE]",
			"ts":            time.Now().UTC().Format(time.RFC3339),
			"request_id":    rid,
			"method":        c.Method(),
			"path":          c.Path(),
			"query":         protocol.CompactQueryForLog(query),
			"userAgent":     protocol.TruncateLogValue(c.Get(fiber.HeaderUserAgent)),
			"contentType":   c.Get(fiber.HeaderContentType),
			"contentLength": len(c.Body()),
		})

		return c.Next()
	}
}

func shouldTrace(c *fiber.Ctx, opts TraceOptions) bool {
	if opts.AllRequests {
		return true
	}
	if strings.Contains(c.Path(), "/ContentServer") {
		return true
	}
	if opts.UserAgentMatch != "" &&
		strings.Contains(strings.ToLower(c.Get(fiber.HeaderUserAgent)), strings.ToLower(opts.UserAgentMatch)) {
		return true
	}
	return false
}
