package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapcs/internal/model"
)

func documentRows(rec *model.DocumentRecord) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "file_name", "content_type", "size", "backend", "attachment_source",
		"storage_path", "external_file_id", "created_at", "updated_at",
	}).AddRow(
		rec.ID, rec.FileName, rec.ContentType, rec.Size, rec.Backend, rec.AttachmentSource,
		rec.StoragePath, rec.ExternalFileID, rec.CreatedAt, rec.UpdatedAt,
	)
}

func TestDocumentPostgresUpsert(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	now := time.Now()

	rec := &model.DocumentRecord{
		ID:          "doc-1",
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Size:        12,
		Backend:     model.BackendObject,
		StoragePath: "sap-content/doc-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	t.Run("success", func(t *testing.T) {
		dbMock.ExpectQuery("INSERT INTO sap_documents").
			WithArgs(rec.ID, rec.FileName, rec.ContentType, rec.Size, rec.Backend, rec.AttachmentSource, rec.StoragePath, rec.ExternalFileID).
			WillReturnRows(documentRows(rec))

		got, err := repo.Upsert(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.StoragePath, got.StoragePath)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		dbMock.ExpectQuery("INSERT INTO sap_documents").
			WillReturnError(errors.New("db down"))

		_, err := repo.Upsert(context.Background(), rec)

		assert.Error(t, err)
	})
}

func TestDocumentPostgresFindByID(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)

	t.Run("found", func(t *testing.T) {
		rec := &model.DocumentRecord{ID: "doc-1", FileName: "a.txt", Backend: model.BackendDrive, ExternalFileID: "ext-1"}
		dbMock.ExpectQuery("SELECT .+ FROM sap_documents WHERE id =").
			WithArgs("doc-1").
			WillReturnRows(documentRows(rec))

		got, err := repo.FindByID(context.Background(), "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "ext-1", got.ExternalFileID)
	})

	t.Run("not found surfaces ErrNoRows", func(t *testing.T) {
		dbMock.ExpectQuery("SELECT .+ FROM sap_documents WHERE id =").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestDocumentPostgresDelete(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)

	t.Run("deleted", func(t *testing.T) {
		dbMock.ExpectExec("DELETE FROM sap_documents WHERE id =").
			WithArgs("doc-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), "doc-1"))
	})

	t.Run("absent row is a no-op", func(t *testing.T) {
		dbMock.ExpectExec("DELETE FROM sap_documents WHERE id =").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(context.Background(), "missing"))
	})
}
