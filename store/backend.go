package store

import (
	"context"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// Backend is the durable mirror behind the in-memory index: an object
// store keyed by annotation id with secondary bulk paths by document,
// page and kind. The store writes to it asynchronously, one write at a
// time in issue order, and never waits on the result. Memory stays
// authoritative for the session; a backend that fails to open is
// dropped and the store continues memory-only.
type Backend interface {
	// Open prepares the backend for use. Called once, lazily, before
	// the first store operation.
	Open(ctx context.Context) error
	// Put persists one annotation, overwriting any record with the same id
	Put(ctx context.Context, annotation *model.Annotation) error
	// Delete removes one annotation by id. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
	// DeleteDocument removes every annotation of a document
	DeleteDocument(ctx context.Context, documentKey string) error
	// DeletePage removes every annotation of one page of a document
	DeletePage(ctx context.Context, documentKey string, page int) error
	// DeleteKind removes every annotation of a kind across all documents
	DeleteKind(ctx context.Context, kind model.Kind) error
	// DeleteAll clears the backend entirely
	DeleteAll(ctx context.Context) error
	// LoadAll returns every persisted annotation, used to hydrate the
	// in-memory index when the store initializes.
	LoadAll(ctx context.Context) ([]*model.Annotation, error)
	// Close releases backend resources
	Close() error
}
