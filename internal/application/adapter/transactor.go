package adapter

import (
	"context"

	"github.com/google/uuid"
)

// Transactor runs a unit of work atomically. Repositories called with the
// context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserLocker serialises Hawl evaluation per user across instances.
type UserLocker interface {
	// Lock blocks until the user's lock is held or ctx is done. The returned
	// function releases it.
	Lock(ctx context.Context, userID uuid.UUID) (unlock func(), err error)
}
