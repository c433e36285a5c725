package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_sap_documents",
		SQL: `CREATE TABLE IF NOT EXISTS sap_documents (
  id                TEXT        PRIMARY KEY,
  file_name         TEXT        NOT NULL DEFAULT '',
  content_type      TEXT        NOT NULL DEFAULT '',
  size              BIGINT      NOT NULL DEFAULT 0 CHECK (size >= 0),
  backend           TEXT        NOT NULL DEFAULT '',
  attachment_source TEXT        NOT NULL DEFAULT '',
  storage_path      TEXT        NOT NULL DEFAULT '',
  external_file_id  TEXT        NOT NULL DEFAULT '',
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_sap_documents_backend",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_sap_documents_backend ON sap_documents (backend);`,
	},
	{
		Name: "create_index_sap_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_sap_documents_created_at ON sap_documents (created_at);`,
	},
	{
		Name: "create_table_sap_attachment_metadata",
		SQL: `CREATE TABLE IF NOT EXISTS sap_attachment_metadata (
  document_id          TEXT        PRIMARY KEY,
  business_object_type TEXT        NOT NULL DEFAULT '',
  business_object_id   TEXT        NOT NULL DEFAULT '',
  source_location      TEXT        NOT NULL DEFAULT '',
  destination_location TEXT        NOT NULL DEFAULT '',
  original_file_name   TEXT        NOT NULL DEFAULT '',
  source_system        TEXT        NOT NULL DEFAULT '',
  attachment_source    TEXT        NOT NULL DEFAULT '',
  attributes           JSONB       NOT NULL DEFAULT '{}',
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_sap_attachment_metadata_business_object",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_sap_attachment_metadata_bo ON sap_attachment_metadata (business_object_type, business_object_id);`,
	},
}

// EnsureMigrated checks if the 'sap_documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.sap_documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
