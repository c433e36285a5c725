package blob

import (
	"bytes"
	"context"
	"io"
	"strings"

	"sapcs/internal/apperr"
	"sapcs/internal/model"
	"sapcs/internal/storage"
)

// basePrefix is the bucket-level namespace for document content.
const basePrefix = "sap-content"

// User metadata keys attached to every stored object.
const (
	metaFileName         = "file-name"
	metaDocumentID       = "document-id"
	metaAttachmentSource = "attachment-source"
)

// objectStore keeps content in an S3-compatible bucket. Keys embed the
// attachment source when known: sap-content/{source}/{documentId}, else
// sap-content/{documentId}.
type objectStore struct {
	store storage.Storage
}

// NewObjectStore builds the object-storage backend over the given client.
func NewObjectStore(store storage.Storage) Store {
	return &objectStore{store: store}
}

func buildKey(documentID, attachmentSource string) string {
	if attachmentSource != "" {
		return basePrefix + "/" + attachmentSource + "/" + documentID
	}
	return basePrefix + "/" + documentID
}

func (o *objectStore) Put(ctx context.Context, in model.PutInput) (model.PutResult, error) {
	key := buildKey(in.DocumentID, in.AttachmentSource)
	_, err := o.store.Put(ctx, key, bytes.NewReader(in.Bytes), storage.PutObjectOptions{
		Size:        int64(len(in.Bytes)),
		ContentType: in.ContentType,
		Metadata: map[string]string{
			metaFileName:         in.FileName,
			metaDocumentID:       in.DocumentID,
			metaAttachmentSource: in.AttachmentSource,
		},
	})
	if err != nil {
		return model.PutResult{}, apperr.Upstream("upload to object storage", err)
	}
	return model.PutResult{StoragePath: key, Size: int64(len(in.Bytes))}, nil
}

// resolveKey finds the current object key for a document id: the direct path
// first, then a prefix scan matching on the trailing id segment. The scan
// covers layouts written before the attachment-source folder existed (or with
// a different one).
func (o *objectStore) resolveKey(ctx context.Context, documentID string) (string, error) {
	direct := buildKey(documentID, "")
	if _, exists, err := o.store.Stat(ctx, direct); err != nil {
		return "", apperr.Upstream("probe object", err)
	} else if exists {
		return direct, nil
	}

	keys, err := o.store.List(ctx, basePrefix+"/")
	if err != nil {
		return "", apperr.Upstream("scan object prefix", err)
	}
	suffix := "/" + documentID
	for _, key := range keys {
		if strings.HasSuffix(key, suffix) {
			return key, nil
		}
	}
	return "", nil
}

func (o *objectStore) Get(ctx context.Context, documentID string) (*model.StoredFile, error) {
	key, err := o.resolveKey(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}

	rc, info, err := o.store.Get(ctx, key)
	if err != nil {
		return nil, apperr.Upstream("download object", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.Upstream("read object", err)
	}

	fileName := metadataValue(info.Metadata, metaFileName)
	if fileName == "" {
		fileName = documentID + ".bin"
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &model.StoredFile{Bytes: data, ContentType: contentType, FileName: fileName}, nil
}

func (o *objectStore) Remove(ctx context.Context, documentID string) error {
	key, err := o.resolveKey(ctx, documentID)
	if err != nil {
		return err
	}
	if key == "" {
		return nil
	}
	if err := o.store.Delete(ctx, key); err != nil {
		return apperr.Upstream("delete object", err)
	}
	return nil
}

// metadataValue looks a user-metadata key up case-insensitively; S3 clients
// canonicalize header-derived keys.
func metadataValue(meta map[string]string, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
