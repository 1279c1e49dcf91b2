package uow

import (
	"context"

	"agri-credit-engine/internal/domain/borrower"
)

// UnitOfWork applies a mutation to one borrower record atomically.
type UnitOfWork interface {
	// WithinBorrower loads the borrower, runs fn against it and writes the
	// record back with a version check. fn may run more than once when a
	// concurrent writer wins, always against freshly loaded state; it must
	// not have side effects outside b.
	WithinBorrower(ctx context.Context, borrowerID string, fn func(r borrower.Repository, b *borrower.Borrower) error) error
}
