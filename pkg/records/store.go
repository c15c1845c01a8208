package records

import (
	"context"
	"errors"
	"iter"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("records: not found")

const keyPrefix = "interview:"

func recordKey(id string) []byte {
	return []byte(keyPrefix + id)
}

// Store persists interview records.
type Store interface {
	// Get returns ErrNotFound when id does not exist.
	Get(ctx context.Context, id string) (*Interview, error)

	Put(ctx context.Context, rec *Interview) error

	// Delete returns ErrNotFound when id does not exist.
	Delete(ctx context.Context, id string) error

	// List yields every record in key order.
	List(ctx context.Context) iter.Seq2[*Interview, error]

	Close() error
}
