package protocol

import (
	"fmt"
	"strings"
)

// maxLogValueLength caps individual query values in diagnostic logs.
const maxLogValueLength = 220

// sensitiveQueryKeys are never logged verbatim; values are replaced with a
// redaction marker that preserves only the original length.
var sensitiveQueryKeys = map[string]struct{}{
	"seckey":        {},
	"authid":        {},
	"signature":     {},
	"token":         {},
	"authorization": {},
}

// TruncateLogValue shortens long values for logging, appending a marker with
// the original length so truncation stays visible in the trace.
func TruncateLogValue(value string) string {
	if len(value) <= maxLogValueLength {
		return value
	}
	return fmt.Sprintf("%s...[truncated:%d]", value[:maxLogValueLength], len(value))
}

// CompactQueryForLog returns a copy of the query safe for diagnostic logging:
// sensitive keys redacted by name, long values truncated. This is a logging
// contract relied on in production triage; it must never fail.
func CompactQueryForLog(query map[string]string) map[string]string {
	out := make(map[string]string, len(query))
	for key, value := range query {
		if _, sensitive := sensitiveQueryKeys[strings.ToLower(key)]; sensitive {
			out[key] = fmt.Sprintf("[REDACTED:%d]", len(value))
			continue
		}
		out[key] = TruncateLogValue(value)
	}
	return out
}
