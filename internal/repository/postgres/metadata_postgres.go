package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"sapcs/internal/model"
	"sapcs/internal/repository"
)

// MetadataPostgres is a PostgreSQL implementation of repository.MetadataRepository.
type MetadataPostgres struct {
	db *sql.DB
}

// NewMetadataPostgres creates a new MetadataPostgres repository.
func NewMetadataPostgres(db *sql.DB) *MetadataPostgres {
	return &MetadataPostgres{db: db}
}

var _ repository.MetadataRepository = (*MetadataPostgres)(nil)

const metadataColumns = `document_id, business_object_type, business_object_id, source_location, destination_location, original_file_name, source_system, attachment_source, attributes, created_at, updated_at`

func scanMetadata(row interface{ Scan(...any) error }) (*model.AttachmentBusinessMetadata, error) {
	var (
		meta  model.AttachmentBusinessMetadata
		attrs []byte
	)
	if err := row.Scan(
		&meta.DocumentID,
		&meta.BusinessObjectType,
		&meta.BusinessObjectID,
		&meta.SourceLocation,
		&meta.DestinationLocation,
		&meta.OriginalFileName,
		&meta.SourceSystem,
		&meta.AttachmentSource,
		&attrs,
		&meta.CreatedAt,
		&meta.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &meta.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	return &meta, nil
}

// Upsert merges incoming fields over the stored row: non-empty incoming
// values win, empty ones keep what is stored. created_at never changes after
// the first write.
func (r *MetadataPostgres) Upsert(ctx context.Context, meta *model.AttachmentBusinessMetadata) (*model.AttachmentBusinessMetadata, error) {
	var attrs any
	if meta.Attributes != nil {
		encoded, err := json.Marshal(meta.Attributes)
		if err != nil {
			return nil, fmt.Errorf("encode attributes: %w", err)
		}
		attrs = encoded
	}

	const q = `
		INSERT INTO sap_attachment_metadata (document_id, business_object_type, business_object_id, source_location, destination_location, original_file_name, source_system, attachment_source, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '{}'::jsonb), now(), now())
		ON CONFLICT (document_id) DO UPDATE SET
			business_object_type = COALESCE(NULLIF(EXCLUDED.business_object_type, ''), sap_attachment_metadata.business_object_type),
			business_object_id   = COALESCE(NULLIF(EXCLUDED.business_object_id, ''), sap_attachment_metadata.business_object_id),
			source_location      = COALESCE(NULLIF(EXCLUDED.source_location, ''), sap_attachment_metadata.source_location),
			destination_location = COALESCE(NULLIF(EXCLUDED.destination_location, ''), sap_attachment_metadata.destination_location),
			original_file_name   = COALESCE(NULLIF(EXCLUDED.original_file_name, ''), sap_attachment_metadata.original_file_name),
			source_system        = COALESCE(NULLIF(EXCLUDED.source_system, ''), sap_attachment_metadata.source_system),
			attachment_source    = COALESCE(NULLIF(EXCLUDED.attachment_source, ''), sap_attachment_metadata.attachment_source),
			attributes           = COALESCE($9, sap_attachment_metadata.attributes),
			updated_at           = now()
		RETURNING ` + metadataColumns
	row := r.db.QueryRowContext(ctx, q,
		meta.DocumentID,
		meta.BusinessObjectType,
		meta.BusinessObjectID,
		meta.SourceLocation,
		meta.DestinationLocation,
		meta.OriginalFileName,
		meta.SourceSystem,
		meta.AttachmentSource,
		attrs,
	)
	return scanMetadata(row)
}

// FindByID fetches metadata by document id.
func (r *MetadataPostgres) FindByID(ctx context.Context, documentID string) (*model.AttachmentBusinessMetadata, error) {
	const q = `SELECT ` + metadataColumns + ` FROM sap_attachment_metadata WHERE document_id = $1`
	return scanMetadata(r.db.QueryRowContext(ctx, q, documentID))
}

// Delete removes metadata by document id; a missing row is not an error.
func (r *MetadataPostgres) Delete(ctx context.Context, documentID string) error {
	const q = `DELETE FROM sap_attachment_metadata WHERE document_id = $1`
	res, err := r.db.ExecContext(ctx, q, documentID)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
