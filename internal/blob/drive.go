package blob

import (
	"bytes"
	"context"
	"database/sql"
	"errors"

	"sapcs/internal/apperr"
	"sapcs/internal/config"
	"sapcs/internal/drive"
	"sapcs/internal/model"
	"sapcs/internal/replication"
	"sapcs/internal/repository"
)

// driveStore uses the drive service as primary storage. Files land flat under
// the configured root folder named "{documentId}__{fileName}"; reads and
// removes resolve the external file id through the document repository.
type driveStore struct {
	folders drive.FolderStore
	docs    repository.DocumentRepository
	cfg     *config.Resolver
}

// NewDriveStore builds the drive-as-primary-storage backend.
func NewDriveStore(folders drive.FolderStore, docs repository.DocumentRepository, cfg *config.Resolver) Store {
	return &driveStore{folders: folders, docs: docs, cfg: cfg}
}

func (d *driveStore) Put(ctx context.Context, in model.PutInput) (model.PutResult, error) {
	rootID := d.cfg.DriveFolderID()
	if rootID == "" {
		return model.PutResult{}, apperr.Configuration("GOOGLE_DRIVE_FOLDER_ID is required for the drive backend")
	}

	fileID, err := d.folders.CreateFile(ctx, drive.CreateFileInput{
		Name:        in.DocumentID + "__" + in.FileName,
		ContentType: in.ContentType,
		ParentID:    rootID,
		Properties: map[string]string{
			replication.TagKey: in.DocumentID,
			"fileName":         in.FileName,
		},
		Content: bytes.NewReader(in.Bytes),
	})
	if err != nil {
		return model.PutResult{}, apperr.Upstream("upload to drive", err)
	}
	return model.PutResult{ExternalFileID: fileID, Size: int64(len(in.Bytes))}, nil
}

func (d *driveStore) Get(ctx context.Context, documentID string) (*model.StoredFile, error) {
	rec, err := d.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Upstream("lookup document record", err)
	}
	if rec.ExternalFileID == "" {
		return nil, nil
	}

	data, err := d.folders.Download(ctx, rec.ExternalFileID)
	if err != nil {
		return nil, apperr.Upstream("download from drive", err)
	}
	return &model.StoredFile{Bytes: data, ContentType: rec.ContentType, FileName: rec.FileName}, nil
}

func (d *driveStore) Remove(ctx context.Context, documentID string) error {
	rec, err := d.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return apperr.Upstream("lookup document record", err)
	}
	if rec.ExternalFileID == "" {
		return nil
	}
	if err := d.folders.DeleteFile(ctx, rec.ExternalFileID); err != nil {
		return apperr.Upstream("delete from drive", err)
	}
	return nil
}
