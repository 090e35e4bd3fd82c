// Package docstore is a small document database: schemaless JSON records
// grouped into collections and addressed by id.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrPermissionDenied is returned when the store refuses a write.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrEmptyKey is returned for an empty collection or id.
	ErrEmptyKey = errors.New("collection and id must not be empty")
)

// Record is the content of one document.
type Record map[string]any

// Document pairs a record with its id.
type Document struct {
	ID   string
	Data Record
}

// Store is the document store contract.
type Store interface {
	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Record, error)
	// Set creates or replaces the record.
	Set(ctx context.Context, collection, id string, rec Record) error
	// Update merges fields into an existing record or returns ErrNotFound.
	Update(ctx context.Context, collection, id string, fields Record) error
	// Add stores rec under a generated id and returns the id.
	Add(ctx context.Context, collection string, rec Record) (string, error)
	// Delete removes the record or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// List returns all records of a collection.
	List(ctx context.Context, collection string, opts ...ListOption) ([]Document, error)
}

// ListOptions control List.
type ListOptions struct {
	OrderBy string
	Desc    bool
	Where   map[string]any
}

// ListOption configures a List call.
type ListOption func(*ListOptions)

// OrderBy sorts by a top level field. Missing fields sort first.
func OrderBy(field string, desc bool) ListOption {
	return func(o *ListOptions) {
		o.OrderBy = field
		o.Desc = desc
	}
}

// Where keeps only records whose field equals value.
func Where(field string, value any) ListOption {
	return func(o *ListOptions) {
		if o.Where == nil {
			o.Where = make(map[string]any)
		}

		o.Where[field] = value
	}
}
