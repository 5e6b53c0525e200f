// Package store provides the record store abstraction the form pipeline
// writes to: JSON-like documents grouped into named collections, each with a
// store-assigned id and creation timestamp.
package store

import (
	"context"
	"errors"
	"time"
)

// Collection names used by the form pipeline.
const (
	CollectionContactMessages = "contactMessages"
	CollectionAppointments    = "appointments"
	CollectionOrders          = "orders"
)

// Sentinel errors for the store failure taxonomy. Implementations wrap the
// underlying cause; callers detect the category with errors.Is and convert
// to a user-visible alert at the module boundary.
var (
	ErrWrite  = errors.New("record store: write failed")
	ErrRead   = errors.New("record store: read failed")
	ErrDelete = errors.New("record store: delete failed")
)

// Record is a stored document with its store-assigned identity.
type Record struct {
	ID         string         `json:"id"`
	Collection string         `json:"-"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// RecordStore persists documents into named collections.
type RecordStore interface {
	// CreateRecord writes data plus a server-assigned creation timestamp to
	// the named collection and returns the new identifier. Callers must not
	// assume partial success on error.
	CreateRecord(ctx context.Context, collection string, data map[string]any) (string, error)

	// ListRecords returns all records in the collection ordered by creation
	// time, newest first.
	ListRecords(ctx context.Context, collection string) ([]Record, error)

	// DeleteRecord removes the record with the given id. Deleting a
	// nonexistent id is not an error.
	DeleteRecord(ctx context.Context, collection, id string) error
}
