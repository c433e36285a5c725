package model

import "time"

// Storage backend identifiers. The object backend keeps content in an
// S3-compatible bucket; the drive backend stores content directly in the
// mirror folder hierarchy.
const (
	BackendObject = "object"
	BackendDrive  = "drive"
)

// DocumentRecord represents a stored document in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// One record exists per document id; CreatedAt is immutable after first write
// while UpdatedAt is refreshed on every put.
type DocumentRecord struct {
	ID               string    `json:"id"`
	FileName         string    `json:"fileName"`
	ContentType      string    `json:"contentType"`
	Size             int64     `json:"size"`
	Backend          string    `json:"backend"`
	AttachmentSource string    `json:"attachmentSource,omitempty"`
	StoragePath      string    `json:"storagePath,omitempty"`
	ExternalFileID   string    `json:"externalFileId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// AttachmentBusinessMetadata carries the business-object context a document is
// attached to. Its lifecycle is independent of the binary content: it may be
// written before the content arrives (metadata-first) or after (upload-first).
type AttachmentBusinessMetadata struct {
	DocumentID          string            `json:"documentId"`
	BusinessObjectType  string            `json:"businessObjectType,omitempty"`
	BusinessObjectID    string            `json:"businessObjectId,omitempty"`
	SourceLocation      string            `json:"sourceLocation,omitempty"`
	DestinationLocation string            `json:"destinationLocation,omitempty"`
	OriginalFileName    string            `json:"originalFileName,omitempty"`
	SourceSystem        string            `json:"sourceSystem,omitempty"`
	AttachmentSource    string            `json:"attachmentSource,omitempty"`
	Attributes          map[string]string `json:"attributes,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// HasReplicationFields reports whether the metadata carries everything the
// replicator needs to build a mirror folder path.
func (m *AttachmentBusinessMetadata) HasReplicationFields() bool {
	return m != nil &&
		m.BusinessObjectType != "" &&
		m.BusinessObjectID != "" &&
		m.OriginalFileName != ""
}

// PutInput describes a single blob upload keyed by document id.
type PutInput struct {
	DocumentID       string
	FileName         string
	ContentType      string
	Bytes            []byte
	AttachmentSource string
}

// PutResult reports where content landed. Exactly one of StoragePath and
// ExternalFileID is populated depending on the backend; callers must treat
// both as optional.
type PutResult struct {
	StoragePath    string
	ExternalFileID string
	Size           int64
}

// StoredFile is a document payload read back from a blob backend.
type StoredFile struct {
	Bytes       []byte
	ContentType string
	FileName    string
}
