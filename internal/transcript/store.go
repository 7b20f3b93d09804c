package transcript

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store lookups when no record with the given id
// exists.
var ErrNotFound = errors.New("transcript: not found")

// Store persists transcript records. All implementations must be safe for
// concurrent use.
type Store interface {
	// Create inserts a new record.
	Create(ctx context.Context, r Record) error

	// Get returns the record with the given id, or [ErrNotFound].
	Get(ctx context.Context, id string) (Record, error)

	// List returns all records ordered by creation time, newest first.
	List(ctx context.Context) ([]Record, error)

	// Update overwrites an existing record, or returns [ErrNotFound].
	Update(ctx context.Context, r Record) error

	// Delete removes a record and is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}
