package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"sapcs/internal/apperr"
	"sapcs/internal/blob"
	"sapcs/internal/config"
	"sapcs/internal/model"
	"sapcs/internal/protocol"
	"sapcs/internal/replication"
	"sapcs/internal/repository"
)

var (
	ErrIDRequired   = errors.New("documentId or docId is required")
	ErrFileRequired = errors.New("file is required")
)

// StoreInput describes one inbound content write, already lifted out of the
// transport representation (multipart, raw body, legacy PUT).
type StoreInput struct {
	DocumentID       string // empty means generate one
	FileName         string
	ContentType      string
	Bytes            []byte
	AttachmentSource string // normalized direct hint; empty falls back to stored metadata
}

// StoreResult is the response shape shared by every upload surface.
type StoreResult struct {
	DocumentID        string `json:"documentId"`
	Backend           string `json:"backend"`
	Size              int64  `json:"size"`
	ReplicatedToDrive bool   `json:"replicatedToDrive"`
}

// ContentService defines the use cases of the content gateway. It orchestrates
// blob I/O, metadata persistence, and conditional mirror replication.
type ContentService interface {
	// Store writes content, conditionally replicates, and upserts the
	// document record.
	Store(ctx context.Context, in StoreInput) (*StoreResult, error)

	// Fetch returns stored content, or (nil, nil) when absent.
	Fetch(ctx context.Context, documentID string) (*model.StoredFile, error)

	// Remove deletes content, mirror replicas, and the document record.
	// Removing an absent document is a no-op.
	Remove(ctx context.Context, documentID string) error

	// UpsertMetadata processes a single or batch metadata payload. Each
	// successful item triggers a lazy replication retry when content already
	// exists.
	UpsertMetadata(ctx context.Context, payload any, requestID string) (*MetadataBatchResult, error)

	// Metadata returns stored business metadata or apperr.ErrNotFound.
	Metadata(ctx context.Context, documentID string) (*model.AttachmentBusinessMetadata, error)

	// ServerInfo renders the legacy capability response body.
	ServerInfo() string

	// ReplicationEnabled reports the effective replication switch.
	ReplicationEnabled() bool

	// StorageHealth runs a write-read-delete round trip against the blob store.
	StorageHealth(ctx context.Context) *HealthReport

	// ReplicationHealth introspects the mirror root folder.
	ReplicationHealth(ctx context.Context) *HealthReport
}

// contentGateway is the concrete ContentService.
type contentGateway struct {
	blob       blob.Store
	docs       repository.DocumentRepository
	meta       repository.MetadataRepository
	replicator *replication.Replicator
	cfg        *config.Resolver
}

// NewContentGateway constructs the gateway. replicator may be nil only when
// the resolver can never report replication as enabled.
func NewContentGateway(
	store blob.Store,
	docs repository.DocumentRepository,
	meta repository.MetadataRepository,
	replicator *replication.Replicator,
	cfg *config.Resolver,
) ContentService {
	return &contentGateway{blob: store, docs: docs, meta: meta, replicator: replicator, cfg: cfg}
}

// logEvent writes one tagged JSON line to stdout, in the same shape the HTTP
// middleware logs. Logging must never fail a request.
func logEvent(tag string, fields map[string]any) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stdout, "%s %s\n", tag, payload)
}

func (g *contentGateway) ReplicationEnabled() bool {
	return g.cfg.ReplicateToDrive()
}

// resolveAttachmentSource prefers the caller's direct hint and falls back to
// previously stored metadata.
func (g *contentGateway) resolveAttachmentSource(ctx context.Context, documentID, direct string) string {
	if direct != "" {
		return direct
	}
	meta, err := g.meta.FindByID(ctx, documentID)
	if err != nil || meta.AttachmentSource == "" {
		return ""
	}
	return protocol.ToSourceFolderSegment(meta.AttachmentSource)
}

// replicateIfReady mirrors content when replication is enabled and the stored
// business metadata is complete. Incomplete metadata is a logged skip, not an
// error: the metadata-first flow finishes the job later. A replication
// failure aborts the request only in strict mode.
func (g *contentGateway) replicateIfReady(ctx context.Context, documentID, contentType string, content []byte) (bool, error) {
	if !g.cfg.ReplicateToDrive() {
		return false, nil
	}

	meta, err := g.meta.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if g.cfg.StrictReplication() {
			return false, apperr.Upstream("load metadata for replication", err)
		}
		logEvent("[SAP-DRIVE-REPLICATION-FAILED]", map[string]any{"documentId": documentID, "error": err.Error()})
		return false, nil
	}

	if !meta.HasReplicationFields() {
		logEvent("[SAP-DRIVE-REPLICATION-SKIPPED]", map[string]any{
			"documentId":         documentID,
			"reason":             "missing required metadata fields",
			"businessObjectType": meta.BusinessObjectType != "",
			"businessObjectId":   meta.BusinessObjectID != "",
			"originalFileName":   meta.OriginalFileName != "",
		})
		return false, nil
	}

	_, err = g.replicator.Replicate(ctx, documentID, meta.OriginalFileName, contentType, content, replication.PathContext{
		BusinessObjectType:  meta.BusinessObjectType,
		BusinessObjectID:    meta.BusinessObjectID,
		SourceLocation:      meta.SourceLocation,
		DestinationLocation: meta.DestinationLocation,
	})
	if err != nil {
		if g.cfg.StrictReplication() {
			return false, err
		}
		logEvent("[SAP-DRIVE-REPLICATION-FAILED]", map[string]any{"documentId": documentID, "error": err.Error()})
		return false, nil
	}
	return true, nil
}

func (g *contentGateway) Store(ctx context.Context, in StoreInput) (*StoreResult, error) {
	if len(in.Bytes) == 0 {
		return nil, apperr.Validation("%s", ErrFileRequired.Error())
	}

	documentID := in.DocumentID
	if documentID == "" {
		documentID = uuid.NewString()
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileName := in.FileName
	if fileName == "" {
		fileName = documentID + ".bin"
	}

	attachmentSource := g.resolveAttachmentSource(ctx, documentID, in.AttachmentSource)

	putResult, err := g.blob.Put(ctx, model.PutInput{
		DocumentID:       documentID,
		FileName:         fileName,
		ContentType:      contentType,
		Bytes:            in.Bytes,
		AttachmentSource: attachmentSource,
	})
	if err != nil {
		return nil, err
	}

	replicated, err := g.replicateIfReady(ctx, documentID, contentType, in.Bytes)
	if err != nil {
		return nil, err
	}

	if _, err := g.docs.Upsert(ctx, &model.DocumentRecord{
		ID:               documentID,
		FileName:         fileName,
		ContentType:      contentType,
		Size:             putResult.Size,
		Backend:          g.cfg.Backend(),
		AttachmentSource: attachmentSource,
		StoragePath:      putResult.StoragePath,
		ExternalFileID:   putResult.ExternalFileID,
	}); err != nil {
		return nil, apperr.Upstream("persist document record", err)
	}

	return &StoreResult{
		DocumentID:        documentID,
		Backend:           g.cfg.Backend(),
		Size:              putResult.Size,
		ReplicatedToDrive: replicated,
	}, nil
}

func (g *contentGateway) Fetch(ctx context.Context, documentID string) (*model.StoredFile, error) {
	if documentID == "" {
		return nil, apperr.Validation("%s", ErrIDRequired.Error())
	}
	return g.blob.Get(ctx, documentID)
}

func (g *contentGateway) Remove(ctx context.Context, documentID string) error {
	if documentID == "" {
		return apperr.Validation("%s", ErrIDRequired.Error())
	}

	if err := g.blob.Remove(ctx, documentID); err != nil {
		return err
	}

	if g.cfg.ReplicateToDrive() {
		if _, err := g.replicator.DeleteReplicas(ctx, documentID); err != nil {
			if g.cfg.StrictReplication() {
				return err
			}
			logEvent("[SAP-DRIVE-REPLICA-DELETE-FAILED]", map[string]any{"documentId": documentID, "error": err.Error()})
		}
	}

	if err := g.docs.Delete(ctx, documentID); err != nil {
		return apperr.Upstream("delete document record", err)
	}
	return nil
}

func (g *contentGateway) Metadata(ctx context.Context, documentID string) (*model.AttachmentBusinessMetadata, error) {
	meta, err := g.meta.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Upstream("load metadata", err)
	}
	return meta, nil
}

// ServerInfo renders the plaintext capability lines legacy clients probe for.
func (g *contentGateway) ServerInfo() string {
	return "server=SAP-CONTENT-SERVER\n" +
		"serverVersion=1.0\n" +
		"serverBuild=2026-02-14\n" +
		"backend=" + g.cfg.Backend() + "\n" +
		"capabilities=PING,SERVERINFO,PUT,GET,DELETE"
}
