package postgres

import (
	"context"
	"database/sql"

	"sapcs/internal/model"
	"sapcs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, file_name, content_type, size, backend, attachment_source, storage_path, external_file_id, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.DocumentRecord, error) {
	var rec model.DocumentRecord
	if err := row.Scan(
		&rec.ID,
		&rec.FileName,
		&rec.ContentType,
		&rec.Size,
		&rec.Backend,
		&rec.AttachmentSource,
		&rec.StoragePath,
		&rec.ExternalFileID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert inserts a new record or overwrites the existing one. created_at is
// preserved on conflict; updated_at always refreshes.
func (r *DocumentPostgres) Upsert(ctx context.Context, rec *model.DocumentRecord) (*model.DocumentRecord, error) {
	const q = `
		INSERT INTO sap_documents (id, file_name, content_type, size, backend, attachment_source, storage_path, external_file_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			file_name        = EXCLUDED.file_name,
			content_type     = EXCLUDED.content_type,
			size             = EXCLUDED.size,
			backend          = EXCLUDED.backend,
			attachment_source = EXCLUDED.attachment_source,
			storage_path     = EXCLUDED.storage_path,
			external_file_id = EXCLUDED.external_file_id,
			updated_at       = now()
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.FileName,
		rec.ContentType,
		rec.Size,
		rec.Backend,
		rec.AttachmentSource,
		rec.StoragePath,
		rec.ExternalFileID,
	)
	return scanDocument(row)
}

// FindByID fetches a single document record by its id.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.DocumentRecord, error) {
	const q = `SELECT ` + documentColumns + ` FROM sap_documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// Delete removes a record by id. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM sap_documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
