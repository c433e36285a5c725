// Package protocol classifies inbound legacy SAP Content Server requests.
// Real-world SAP clients do not agree on parameter casing or encoding, so
// everything here is a layered heuristic over the raw request facts. All
// functions are pure; transport handlers build a Request and call in.
package protocol

import (
	"net/http"
	"strings"
)

// Request is the transport-independent view of an inbound request. Query holds
// the structured (decoded) query parameters; RawQuery is the untouched query
// string, kept because some clients double-encode or send keys the structured
// parser drops.
type Request struct {
	Method         string
	Query          map[string]string
	RawQuery       string
	MethodOverride string
	BodyFields     map[string]string
	PathParams     map[string]string
}

// documentIDKeys is the ordered lookup list for document identifiers.
// First non-empty value wins; matching is case-insensitive.
var documentIDKeys = []string{
	"docId",
	"documentId",
	"sapwdresourceid",
	"sapWdResourceId",
	"sap-wd-resource-id",
	"objectId",
	"object_id",
	"phioId",
	"phio_id",
}

var (
	getCommands    = []string{"GET", "READ"}
	deleteCommands = []string{"DELETE", "DEL", "REMOVE", "DELETECOMP", "DELETECONTENT"}
	infoCommands   = []string{"PING", "SERVERINFO"}

	deleteFlagKeys    = []string{"delete", "del", "remove", "deletecomp", "deletecontent"}
	deleteAccessModes = []string{"d", "delete", "x", "del", "remove"}
	readAccessModes   = []string{"", "r", "read", "display"}
)

// PickValue returns the first non-blank value among keys, matched
// case-insensitively against the source map.
func PickValue(source map[string]string, keys ...string) string {
	if len(source) == 0 {
		return ""
	}
	for _, key := range keys {
		for k, v := range source {
			if strings.EqualFold(k, key) && strings.TrimSpace(v) != "" {
				return v
			}
		}
	}
	return ""
}

func hasKey(source map[string]string, key string) bool {
	for k := range source {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// HasKey reports whether any of keys is present in source, matched
// case-insensitively. Presence alone counts; legacy clients send flag
// parameters with no value.
func HasKey(source map[string]string, keys ...string) bool {
	for _, key := range keys {
		if hasKey(source, key) {
			return true
		}
	}
	return false
}

// NormalizeCmd reduces a raw cmd value to its canonical uppercase form,
// cutting at the first embedded separator left behind by double encoding.
func NormalizeCmd(value string) string {
	if i := strings.IndexAny(value, "?&"); i >= 0 {
		value = value[:i]
	}
	return strings.ToUpper(strings.TrimSpace(value))
}

// RawQueryTokens splits the raw query string into lowercased tokens. Tokens
// are split on both '&' and '?' since legacy clients nest query strings.
func RawQueryTokens(rawQuery string) []string {
	if rawQuery == "" {
		return nil
	}
	var tokens []string
	for _, token := range strings.FieldsFunc(rawQuery, func(r rune) bool {
		return r == '&' || r == '?'
	}) {
		token = strings.TrimSpace(token)
		if token != "" {
			tokens = append(tokens, strings.ToLower(token))
		}
	}
	return tokens
}

// effectiveCmd resolves the command value: the structured query first, then a
// raw-token scan for clients whose encoding defeats the structured parser.
func effectiveCmd(req Request) string {
	if cmd := NormalizeCmd(PickValue(req.Query, "cmd", "command")); cmd != "" {
		return cmd
	}
	for _, token := range RawQueryTokens(req.RawQuery) {
		if strings.HasPrefix(token, "cmd=") || strings.HasPrefix(token, "command=") {
			_, value, _ := strings.Cut(token, "=")
			return NormalizeCmd(value)
		}
	}
	return ""
}

// AccessMode returns the lowercased accessMode query value.
func AccessMode(req Request) string {
	return strings.ToLower(strings.TrimSpace(PickValue(req.Query, "accessMode", "accessmode")))
}

// DocumentID extracts the caller's document identifier: ordered key lookup
// over query parameters, then body fields, then path parameters.
func DocumentID(req Request) string {
	if v := PickValue(req.Query, documentIDKeys...); v != "" {
		return v
	}
	if v := PickValue(req.BodyFields, documentIDKeys...); v != "" {
		return v
	}
	return PickValue(req.PathParams, "docId", "documentId")
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}

func hasFlag(req Request, rawTokens []string, flag string) bool {
	return hasKey(req.Query, flag) || contains(rawTokens, flag)
}

// ResolveAction classifies the request into an Action. The resolution order is
// a deliberate tie-break policy: explicit command first, then the raw-query
// fallback, then flag keys, then document-id based intent.
func ResolveAction(req Request) Action {
	cmd := effectiveCmd(req)

	switch {
	case contains(getCommands, cmd):
		return ActionGet
	case contains(deleteCommands, cmd):
		return ActionDelete
	case contains(infoCommands, cmd):
		return ActionServerInfo
	}

	rawTokens := RawQueryTokens(req.RawQuery)
	if hasFlag(req, rawTokens, "serverinfo") || hasFlag(req, rawTokens, "ping") {
		return ActionServerInfo
	}

	hasInfoFlag := hasFlag(req, rawTokens, "info")
	documentID := DocumentID(req)

	if hasInfoFlag && documentID == "" {
		return ActionServerInfo
	}

	if documentID != "" {
		hasDeleteFlag := false
		for _, flag := range deleteFlagKeys {
			if hasFlag(req, rawTokens, flag) {
				hasDeleteFlag = true
				break
			}
		}
		accessMode := AccessMode(req)
		if hasDeleteFlag ||
			strings.EqualFold(req.Method, http.MethodDelete) ||
			strings.EqualFold(req.MethodOverride, http.MethodDelete) ||
			contains(deleteAccessModes, accessMode) {
			return ActionDelete
		}
		if hasInfoFlag || contains(readAccessModes, accessMode) {
			return ActionGet
		}
	}

	return ActionUnsupported
}

// DeleteIntent reports whether the request smells like a delete, regardless of
// whether it can be fully classified. Used only for diagnostic probe logging.
func DeleteIntent(req Request) bool {
	if strings.EqualFold(req.Method, http.MethodDelete) ||
		strings.EqualFold(req.MethodOverride, http.MethodDelete) {
		return true
	}
	if contains(deleteAccessModes, AccessMode(req)) {
		return true
	}
	for _, key := range append([]string{"cmd", "command"}, deleteFlagKeys...) {
		if hasKey(req.Query, key) {
			return true
		}
	}
	for _, v := range req.Query {
		if contains(append(deleteFlagKeys, "d", "x"), strings.ToLower(v)) {
			return true
		}
	}
	return false
}
