package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists
// under the given collection and id.
var ErrNotFound = errors.New("document not found")

// Document is a raw JSON document stored under a collection and id.
type Document struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Data       []byte `json:"data"`
}

// Event describes a change to a document. Deleted events carry no data.
type Event struct {
	Collection string
	ID         string
	Data       []byte
	Deleted    bool
}

// Store is a document store keyed by collection and id. Writes replace
// the whole document. Subscribers of a collection receive full snapshots
// of changed documents, in the order the writes happened.
type Store interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Set(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]Document, error)
	Subscribe(collection string) (<-chan Event, func())
}
