package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sapcs/internal/apperr"
	"sapcs/internal/model"
	"sapcs/internal/protocol"
	"sapcs/internal/service"
)

// maxDebugQueryLength caps the echoed query in the debug response header.
const maxDebugQueryLength = 512

// protocolRequest lifts the transport request into the protocol package's
// representation. Multipart and urlencoded form fields are included because
// legacy clients put identifiers wherever their HTTP stack allowed.
func protocolRequest(c *fiber.Ctx) protocol.Request {
	query := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		query[string(key)] = string(value)
	})

	bodyFields := make(map[string]string)
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for key, values := range form.Value {
			if len(values) > 0 {
				bodyFields[key] = values[0]
			}
		}
	} else {
		c.Context().PostArgs().VisitAll(func(key, value []byte) {
			bodyFields[string(key)] = string(value)
		})
	}

	pathParams := make(map[string]string)
	for _, name := range c.Route().Params {
		pathParams[name] = c.Params(name)
	}

	return protocol.Request{
		Method:         c.Method(),
		Query:          query,
		RawQuery:       string(c.Context().URI().QueryString()),
		MethodOverride: c.Get("X-HTTP-Method-Override"),
		BodyFields:     bodyFields,
		PathParams:     pathParams,
	}
}

// sourceHintHeaders collects the headers the attachment-source heuristic reads.
func sourceHintHeaders(c *fiber.Ctx) map[string]string {
	return map[string]string{
		"x-attachment-source": c.Get("X-Attachment-Source"),
		"x-sap-object-type":   c.Get("X-SAP-Object-Type"),
	}
}

// sendStoredFile writes document bytes with download-friendly headers.
func sendStoredFile(c *fiber.Ctx, status int, stored *model.StoredFile) error {
	contentType := stored.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	if stored.FileName != "" {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", stored.FileName))
	}
	return c.Status(status).Send(stored.Bytes)
}

// logLine writes one tagged JSON line to stdout, matching the logging idiom
// used across the service layer.
func logLine(tag string, fields map[string]any) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stdout, "%s %s\n", tag, payload)
}

// setDebugHeaders echoes the resolution outcome so integration teams can see
// how an opaque legacy request was classified without reading server logs.
func setDebugHeaders(c *fiber.Ctx, action protocol.Action, documentID, rawQuery string) {
	c.Set("X-SAP-Debug-Method", c.Method())
	c.Set("X-SAP-Debug-Action", action.String())
	if documentID != "" {
		c.Set("X-SAP-Debug-Docid", documentID)
	}
	encoded := url.QueryEscape(rawQuery)
	if len(encoded) > maxDebugQueryLength {
		encoded = encoded[:maxDebugQueryLength]
	}
	c.Set("X-SAP-Debug-Query", encoded)
}

// Legacy serves /ContentServer/ContentServer.dll for all verbs. The action is
// resolved heuristically; GET answers with the legacy soft responses the SAP
// client tolerates, while unsupported requests get a hard 400.
func Legacy(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := protocolRequest(c)
		action := protocol.ResolveAction(req)
		documentID := protocol.DocumentID(req)
		rid := requestIDFromCtx(c)

		logLine("[SAP-CS-INBOUND]", map[string]any{
			"requestId": rid,
			"method":    c.Method(),
			"action":    action.String(),
			"docId":     documentID,
			"query":     protocol.CompactQueryForLog(req.Query),
		})

		if protocol.DeleteIntent(req) && action != protocol.ActionDelete {
			logLine("[SAP-DELETE-PROBE]", map[string]any{
				"requestId": rid,
				"method":    c.Method(),
				"action":    action.String(),
				"docId":     documentID,
				"rawQuery":  protocol.TruncateLogValue(req.RawQuery),
			})
		}

		setDebugHeaders(c, action, documentID, req.RawQuery)

		switch c.Method() {
		case fiber.MethodGet:
			return legacyGet(c, svc, req, action, documentID, rid)
		case fiber.MethodPost:
			return legacyPost(c, svc, req, action, documentID, rid)
		case fiber.MethodPut:
			return legacyPut(c, svc, req, action, documentID, rid)
		case fiber.MethodDelete:
			return legacyDelete(c, svc, documentID, rid)
		default:
			return apperr.Validation("unsupported method %s", c.Method())
		}
	}
}

func serverInfo(c *fiber.Ctx, svc service.ContentService) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(svc.ServerInfo())
}

func legacyGet(c *fiber.Ctx, svc service.ContentService, req protocol.Request, action protocol.Action, documentID, rid string) error {
	switch action {
	case protocol.ActionServerInfo:
		return serverInfo(c, svc)

	case protocol.ActionGet:
		if documentID == "" {
			return apperr.Validation("docId is required")
		}
		stored, err := svc.Fetch(c.UserContext(), documentID)
		if err != nil {
			return err
		}
		if stored == nil {
			// The SAP client retries hard 4xx responses; an absent document
			// is answered softly.
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(fiber.StatusOK).SendString("document not found")
		}
		return sendStoredFile(c, fiber.StatusOK, stored)

	case protocol.ActionDelete:
		if documentID == "" {
			return serverInfo(c, svc)
		}
		return legacyDelete(c, svc, documentID, rid)

	default:
		return apperr.Validation("unsupported request")
	}
}

func legacyPost(c *fiber.Ctx, svc service.ContentService, req protocol.Request, action protocol.Action, documentID, rid string) error {
	switch action {
	case protocol.ActionServerInfo:
		return serverInfo(c, svc)
	case protocol.ActionDelete:
		if documentID == "" {
			return serverInfo(c, svc)
		}
		return legacyDelete(c, svc, documentID, rid)
	}

	// Everything else on POST is content creation. An explicit cmd must still
	// be one of the create spellings; some clients send it as a form field
	// instead of a query parameter.
	cmd := protocol.NormalizeCmd(protocol.PickValue(req.Query, "cmd", "command"))
	if cmd == "" {
		cmd = protocol.NormalizeCmd(protocol.PickValue(req.BodyFields, "cmd", "command"))
	}
	if cmd == "" {
		cmd = "PUT"
	}
	if cmd != "PUT" && cmd != "CREATE" {
		return apperr.Validation("Unsupported cmd for POST: %s", strings.TrimSpace(cmd))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Validation("cannot open uploaded file")
	}
	defer f.Close()

	content := make([]byte, fh.Size)
	if _, err := io.ReadFull(f, content); err != nil {
		return apperr.Validation("cannot read uploaded file")
	}

	result, err := svc.Store(c.UserContext(), service.StoreInput{
		DocumentID:       documentID,
		FileName:         fh.Filename,
		ContentType:      fh.Header.Get(fiber.HeaderContentType),
		Bytes:            content,
		AttachmentSource: protocol.AttachmentSourceHint(req, sourceHintHeaders(c)),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func legacyPut(c *fiber.Ctx, svc service.ContentService, req protocol.Request, action protocol.Action, documentID, rid string) error {
	// SAP admin clients probe with PUT ?AdminContRep, usually as a bare flag
	// with no value; answer like serverinfo.
	if protocol.HasKey(req.Query, "AdminContRep") {
		logLine("[SAP-CS-ADMIN]", map[string]any{
			"requestId": rid,
			"query":     protocol.CompactQueryForLog(req.Query),
		})
		return serverInfo(c, svc)
	}

	switch action {
	case protocol.ActionServerInfo:
		return serverInfo(c, svc)
	case protocol.ActionDelete:
		if documentID == "" {
			return serverInfo(c, svc)
		}
		return legacyDelete(c, svc, documentID, rid)
	default:
		return apperr.Validation("unsupported request")
	}
}

func legacyDelete(c *fiber.Ctx, svc service.ContentService, documentID, rid string) error {
	if documentID == "" {
		return apperr.Validation("docId is required")
	}
	logLine("[SAP-DELETE]", map[string]any{
		"requestId": rid,
		"docId":     documentID,
	})
	if err := svc.Remove(c.UserContext(), documentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
