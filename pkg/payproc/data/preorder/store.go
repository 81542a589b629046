package preorder

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyExists = errors.New("preorder record already exists")
	ErrNotFound      = errors.New("preorder record not found")
	ErrInvalidRecord = errors.New("preorder record is invalid")
)

// Store persists preorder records keyed by their reference.
//
// Implementations backed by a single long-lived handle are not safe for
// concurrent use and rely on the caller to serialize access.
type Store interface {
	// Put creates a new preorder record. ErrAlreadyExists is returned only when
	// a record with the same reference exists.
	Put(ctx context.Context, record *Record) error

	// Get gets a preorder record by its reference
	Get(ctx context.Context, ref string) (*Record, error)

	// DeleteUnpaidBefore deletes every record created before the provided time
	// that was never paid, returning the number of deleted records.
	DeleteUnpaidBefore(ctx context.Context, before time.Time) (uint64, error)

	// Close releases the underlying handle. Subsequent calls reopen it.
	Close() error
}
