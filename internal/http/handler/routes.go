package handler

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"sapcs/internal/apperr"
	"sapcs/internal/config"
	"sapcs/internal/protocol"
	"sapcs/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; everything flows through the service.
func RegisterRoutes(app *fiber.App, svc service.ContentService, cfg *config.Resolver, metrics prometheus.Gatherer) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs/*", swagger.New(swagger.Config{URL: "/openapi.yaml"}))

	app.Get("/health", Health(svc, cfg))
	app.Get("/health/storage", StorageHealth(svc))
	app.Get("/health/drive-replication", ReplicationHealth(svc))

	// Backward-compatible simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	if metrics != nil {
		promHandler := fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}),
		)
		app.Get("/metrics", func(c *fiber.Ctx) error {
			promHandler(c.Context())
			return nil
		})
	}

	app.Post("/sap/metadata", UpsertMetadata(svc))
	app.Get("/sap/metadata/:documentId", GetMetadata(svc))

	app.Post("/sap/content", UploadContent(svc))
	app.Post("/sap/content/raw", UploadRaw(svc))
	app.Get("/sap/content/:documentId", GetContent(svc))
	app.Delete("/sap/content/:documentId", DeleteContent(svc))

	// Legacy SAP Content Server endpoint; the action is resolved per request.
	legacy := Legacy(svc)
	app.Get("/ContentServer/ContentServer.dll", legacy)
	app.Post("/ContentServer/ContentServer.dll", legacy)
	app.Put("/ContentServer/ContentServer.dll", legacy)
	app.Delete("/ContentServer/ContentServer.dll", legacy)
}

// Health reports the effective configuration without touching any backend.
func Health(svc service.ContentService, cfg *config.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":           "healthy",
			"backend":          cfg.Backend(),
			"replicateToDrive": svc.ReplicationEnabled(),
		})
	}
}

func healthStatusCode(report *service.HealthReport) int {
	if report.Status == service.HealthError {
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusOK
}

// StorageHealth runs the active blob store probe.
func StorageHealth(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := svc.StorageHealth(c.UserContext())
		return c.Status(healthStatusCode(report)).JSON(report)
	}
}

// ReplicationHealth introspects the mirror root folder.
func ReplicationHealth(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := svc.ReplicationHealth(c.UserContext())
		return c.Status(healthStatusCode(report)).JSON(report)
	}
}

// UpsertMetadata accepts a single metadata object or a batch and answers 200
// when everything succeeded, 207 for partial batch failures, 400 when a
// single-object request failed.
func UpsertMetadata(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload any
		if err := json.Unmarshal(c.Body(), &payload); err != nil {
			return apperr.Validation("invalid JSON payload")
		}

		result, err := svc.UpsertMetadata(c.UserContext(), payload, requestIDFromCtx(c))
		if err != nil {
			return err
		}
		if result.TotalReceived == 0 {
			return apperr.Validation("no metadata documents in payload")
		}

		if !result.BatchMode {
			if result.TotalFailed > 0 {
				return apperr.Validation("%s", result.Errors[0].Error)
			}
			return c.JSON(result.Results[0])
		}

		if result.TotalFailed > 0 {
			return c.Status(fiber.StatusMultiStatus).JSON(result)
		}
		return c.JSON(result)
	}
}

// GetMetadata returns stored business metadata by document id.
func GetMetadata(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meta, err := svc.Metadata(c.UserContext(), c.Params("documentId"))
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "metadata not found"})
			}
			return err
		}
		return c.JSON(meta)
	}
}

// UploadContent stores a document from a multipart form (field name: file).
func UploadContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
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

		req := protocolRequest(c)
		result, err := svc.Store(c.UserContext(), service.StoreInput{
			DocumentID:       protocol.DocumentID(req),
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
}

// UploadRaw stores a document from a raw request body. The document id and
// file name come from the X-Document-ID and X-File-Name headers or the query.
func UploadRaw(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return apperr.Validation("request body is required")
		}

		req := protocolRequest(c)
		documentID := c.Get("X-Document-ID")
		if documentID == "" {
			documentID = protocol.DocumentID(req)
		}
		fileName := c.Get("X-File-Name")
		if fileName == "" {
			fileName = protocol.PickValue(req.Query, "fileName")
		}

		content := make([]byte, len(body))
		copy(content, body)

		result, err := svc.Store(c.UserContext(), service.StoreInput{
			DocumentID:       documentID,
			FileName:         fileName,
			ContentType:      c.Get(fiber.HeaderContentType),
			Bytes:            content,
			AttachmentSource: protocol.AttachmentSourceHint(req, sourceHintHeaders(c)),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// GetContent streams stored document content.
func GetContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := svc.Fetch(c.UserContext(), c.Params("documentId"))
		if err != nil {
			return err
		}
		if stored == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document blob not found"})
		}
		return sendStoredFile(c, fiber.StatusOK, stored)
	}
}

// DeleteContent removes a document, its replicas, and its record.
func DeleteContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Remove(c.UserContext(), c.Params("documentId")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
