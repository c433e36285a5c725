// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"sapcs/internal/model"
)

// DocumentRepository persists DocumentRecord rows using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Upsert inserts or overwrites a document record keyed by id. CreatedAt
	// is set on first insert and never changed; UpdatedAt refreshes on every
	// call. Returns the stored record.
	Upsert(ctx context.Context, rec *model.DocumentRecord) (*model.DocumentRecord, error)

	// FindByID returns a document record by its id. Absent rows surface as
	// sql.ErrNoRows for the service layer to translate.
	FindByID(ctx context.Context, id string) (*model.DocumentRecord, error)

	// Delete removes a record by id. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// MetadataRepository persists business metadata keyed by document id. The
// metadata lifecycle is independent of the blob: rows may exist before any
// content arrives.
type MetadataRepository interface {
	// Upsert merges the provided fields over the existing row (non-empty
	// incoming values win, absent values keep the stored ones). CreatedAt is
	// immutable after first write. Returns the merged row.
	Upsert(ctx context.Context, meta *model.AttachmentBusinessMetadata) (*model.AttachmentBusinessMetadata, error)

	// FindByID returns metadata by document id, surfacing sql.ErrNoRows when absent.
	FindByID(ctx context.Context, documentID string) (*model.AttachmentBusinessMetadata, error)

	// Delete removes metadata by document id; absent rows are a no-op.
	Delete(ctx context.Context, documentID string) error
}
