package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"sapcs/internal/blob"
	"sapcs/internal/config"
	"sapcs/internal/database"
	"sapcs/internal/database/migration"
	"sapcs/internal/drive"
	handlers "sapcs/internal/http/handler"
	"sapcs/internal/http/middleware"
	"sapcs/internal/model"
	"sapcs/internal/otel"
	"sapcs/internal/replication"
	"sapcs/internal/repository/postgres"
	"sapcs/internal/service"
	"sapcs/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Runtime override file wins over env for the replication settings
	resolver := config.NewResolver(cfg, config.LoadRuntime())

	ctx := context.Background()
	loc := time.UTC

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	metaRepo := postgres.NewMetadataPostgres(db)

	// The drive client is needed when drive is the primary backend and when
	// mirror replication is switched on (statically or via runtime override).
	var folders drive.FolderStore
	if resolver.Backend() == model.BackendDrive ||
		cfg.Replication.Enabled || resolver.ReplicateToDrive() {
		svc, err := drive.NewService(ctx, cfg.Drive)
		if err != nil {
			log.Fatalf("failed to initialize drive client: %v", err)
		}
		folders = drive.NewFolderStore(svc)
	}

	var blobStore blob.Store
	switch resolver.Backend() {
	case model.BackendDrive:
		blobStore = blob.NewDriveStore(folders, docRepo, resolver)
	default:
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
		blobStore = blob.NewObjectStore(objStore)
	}

	replicator := replication.NewReplicator(folders, resolver)
	contentSvc := service.NewContentGateway(blobStore, docRepo, metaRepo, replicator, resolver)

	registry := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(middleware.SapTrace(middleware.TraceOptions{
		AllRequests:    cfg.Trace.AllRequests,
		UserAgentMatch: cfg.Trace.UserAgent,
	}))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, contentSvc, resolver, registry)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
