package attendance

import (
	"context"
	"time"
)

// Repository is the event log store. Record uniqueness for open records is
// enforced here: InsertOpen must be an atomic check-then-create so that two
// concurrent check-ins for the same (user, department, date) can never both
// produce an open record.
type Repository interface {
	// InsertOpen creates a new open record. When an open record already
	// exists for the same (user, department, date), it returns
	// ErrAlreadyCheckedIn and writes nothing.
	InsertOpen(ctx context.Context, rec Record) (Record, error)

	// Insert creates a record as given, open or closed. Used by manual
	// administrative creation. Still fails with ErrAlreadyCheckedIn if the
	// record would be a second open record for its triple.
	Insert(ctx context.Context, rec Record) (Record, error)

	// FindOpen returns the open record for a triple, or ErrRecordNotFound.
	FindOpen(ctx context.Context, userID, department, date string) (Record, error)

	// SetCheckout closes an open record. Status is left untouched.
	SetCheckout(ctx context.Context, recordID string, at time.Time) (Record, error)

	// GetByID returns a record, or ErrRecordNotFound.
	GetByID(ctx context.Context, id string) (Record, error)

	// Update replaces the mutable fields of a record.
	Update(ctx context.Context, rec Record) error

	// Delete removes a record, or returns ErrRecordNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every record. Administrative wipe.
	DeleteAll(ctx context.Context) error

	// List returns records matching the filter, newest first.
	List(ctx context.Context, filter RecordFilter) ([]Record, error)

	// DeleteOlderThan removes records whose check-in is before the cutoff,
	// returning how many were dropped. Used by the retention sweep.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
