// Package store is the document store the API persists resources in.
//
// A Store holds independent collections of schemaless documents addressed
// by a store-assigned identifier. Implementations must make every single
// call atomic; nothing above this package coordinates across calls.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when no document exists at the given identifier.
// Malformed identifiers (wrong length, not a UUID, ...) are reported the same
// way: such a document cannot exist.
var ErrNotFound = errors.New("document not found")

// Fields maps field names to JSON-compatible values.
type Fields map[string]interface{}

// Document is a stored document: its identifier plus its fields.
type Document struct {
	ID     string
	Fields Fields
}

// MarshalJSON flattens the document into {"id": ..., field: value, ...}.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	return json.Marshal(out)
}

// Store is the document store collaborator.
type Store interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Insert stores fields as a new document under a fresh identifier.
	Insert(ctx context.Context, collection string, fields Fields) (Document, error)

	// Merge overwrites the named fields of an existing document and leaves
	// every other field untouched. ErrNotFound when the document is absent.
	Merge(ctx context.Context, collection, id string, fields Fields) error

	// Delete removes the document. ErrNotFound when it is absent.
	Delete(ctx context.Context, collection, id string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// cloneFields deep copies maps and slices so callers never share state
// with a stored document.
func cloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Fields:
		return map[string]interface{}(cloneFields(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return val
	}
}
