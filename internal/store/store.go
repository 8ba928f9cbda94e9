// Package store is the document-store collaborator: named collections of
// schemaless documents, plus full-collection snapshot subscriptions. Every
// document handed out carries its id under "_id" as a string.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection names used by the portal.
const (
	Patients = "patients"
	Users    = "users"
	Cases    = "cases"
)

// Snapshot is one full-collection read, delivered on subscribe and again on
// every change to that collection. Receivers replace their view wholesale.
type Snapshot struct {
	Collection string   `json:"collection"`
	Docs       []bson.M `json:"docs"`
}

// Store is the narrow contract every handler depends on.
type Store interface {
	// Subscribe delivers an initial snapshot, then one per collection change,
	// until ctx is done. Slow receivers miss intermediate snapshots rather
	// than blocking the feed.
	Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error)

	// List fetches the current full contents of a collection.
	List(ctx context.Context, collection string) ([]bson.M, error)

	// GetOne fetches a single document by id.
	GetOne(ctx context.Context, collection, id string) (bson.M, error)

	// Create inserts a document and returns its assigned id.
	Create(ctx context.Context, collection string, doc bson.M) (string, error)

	// Update applies a partial document (field set) to an existing document.
	Update(ctx context.Context, collection, id string, patch bson.M) error

	// Append atomically appends element to an array field. A non-nil set is
	// applied in the same write, pairing the append with any state change it
	// implies.
	Append(ctx context.Context, collection, id, field string, element any, set bson.M) error

	// FindOneBy fetches the first document whose field equals value.
	FindOneBy(ctx context.Context, collection, field string, value any) (bson.M, error)
}

// ErrNotFound is returned by GetOne and FindOneBy when nothing matches.
type ErrNotFound struct{ Collection, Key string }

func (e ErrNotFound) Error() string { return e.Collection + ": no document for " + e.Key }
