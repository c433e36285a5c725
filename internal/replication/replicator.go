package replication

import (
	"bytes"
	"context"

	"sapcs/internal/apperr"
	"sapcs/internal/config"
	"sapcs/internal/drive"
)

// TagKey is the appProperty every mirrored file carries. It is the only
// linkage between a document id and its replicas; there is no separate index.
const TagKey = "documentId"

// PathContext is the business metadata a replica path is derived from.
type PathContext struct {
	BusinessObjectType  string
	BusinessObjectID    string
	SourceLocation      string
	DestinationLocation string
}

// Replicator is the replica store: it ensures the mirror folder chain exists,
// uploads content tagged with the document id, and deletes replicas by tag.
// Operations are idempotent per document id.
type Replicator struct {
	folders drive.FolderStore
	cfg     *config.Resolver
}

// NewReplicator builds a Replicator over the folder store and the effective
// config resolver.
func NewReplicator(folders drive.FolderStore, cfg *config.Resolver) *Replicator {
	return &Replicator{folders: folders, cfg: cfg}
}

// RootFolderID returns the configured mirror root, or a ConfigurationError
// when replication is enabled without one.
func (r *Replicator) RootFolderID() (string, error) {
	id := r.cfg.DriveFolderID()
	if id == "" {
		return "", apperr.Configuration("GOOGLE_DRIVE_FOLDER_ID is required when REPLICATE_TO_DRIVE=true")
	}
	return id, nil
}

// Replicate mirrors one document into the folder hierarchy and returns the
// created file id. Existing replicas for the same document id are deleted
// first, so repeated uploads replace rather than accumulate. Two concurrent
// callers for the same id settle on whichever delete-then-create finished
// last.
func (r *Replicator) Replicate(ctx context.Context, documentID, fileName, contentType string, content []byte, pc PathContext) (string, error) {
	rootID, err := r.RootFolderID()
	if err != nil {
		return "", err
	}

	segments := ResolveFolderPath(FolderPathInput{
		BusinessObjectType:  pc.BusinessObjectType,
		BusinessObjectID:    pc.BusinessObjectID,
		SourceLocation:      pc.SourceLocation,
		DestinationLocation: pc.DestinationLocation,
		TypeRemap:           r.cfg.TypeRemap(),
		PathTemplate:        r.cfg.PathTemplate(),
	})

	parentID := rootID
	for _, segment := range segments {
		parentID, err = r.folders.EnsureChildFolder(ctx, parentID, segment)
		if err != nil {
			return "", apperr.Upstream("ensure mirror folder "+segment, err)
		}
	}

	if _, err := r.DeleteReplicas(ctx, documentID); err != nil {
		return "", err
	}

	fileID, err := r.folders.CreateFile(ctx, drive.CreateFileInput{
		Name:        fileName,
		ContentType: contentType,
		ParentID:    parentID,
		Properties: map[string]string{
			TagKey:                documentID,
			"businessObjectType":  pc.BusinessObjectType,
			"businessObjectId":    pc.BusinessObjectID,
			"sourceLocation":      pc.SourceLocation,
			"destinationLocation": pc.DestinationLocation,
		},
		Content: bytes.NewReader(content),
	})
	if err != nil {
		return "", apperr.Upstream("create mirror file", err)
	}
	return fileID, nil
}

// DeleteReplicas removes every mirrored file tagged with the document id and
// returns how many were deleted. Zero matches is a no-op; multiple matches
// (duplicates from retried uploads) are all removed.
func (r *Replicator) DeleteReplicas(ctx context.Context, documentID string) (int, error) {
	files, err := r.folders.ListByProperty(ctx, TagKey, documentID)
	if err != nil {
		return 0, apperr.Upstream("list replicas", err)
	}
	deleted := 0
	for _, f := range files {
		if err := r.folders.DeleteFile(ctx, f.ID); err != nil {
			return deleted, apperr.Upstream("delete replica", err)
		}
		deleted++
	}
	return deleted, nil
}

// Diagnose introspects the configured root folder for the health endpoint.
func (r *Replicator) Diagnose(ctx context.Context) (*drive.FolderDiagnosis, error) {
	rootID, err := r.RootFolderID()
	if err != nil {
		return nil, err
	}
	diagnosis, err := r.folders.DiagnoseFolder(ctx, rootID)
	if err != nil {
		return nil, apperr.Upstream("diagnose mirror folder", err)
	}
	return diagnosis, nil
}
