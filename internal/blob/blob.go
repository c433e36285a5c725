// Package blob provides the document-id keyed content store. Two backends
// implement the same contract: direct object storage, and the drive service
// used as primary storage.
package blob

import (
	"context"

	"sapcs/internal/model"
)

// Store reads and writes document content keyed by document id.
type Store interface {
	// Put stores content for a document id. Exactly one of the returned
	// StoragePath/ExternalFileID is populated, depending on the backend.
	Put(ctx context.Context, in model.PutInput) (model.PutResult, error)
	// Get returns the stored content, or (nil, nil) when the document is
	// absent. Absence is a state, not an error.
	Get(ctx context.Context, documentID string) (*model.StoredFile, error)
	// Remove deletes the content. Removing an absent document is a no-op.
	Remove(ctx context.Context, documentID string) error
}
