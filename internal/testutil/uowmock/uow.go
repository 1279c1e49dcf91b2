package uowmock

import (
	"context"
	"errors"

	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinBorrowerFn func(ctx context.Context, borrowerID string, fn func(r borrower.Repository, b *borrower.Borrower) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinBorrower(fn func(context.Context, string, func(borrower.Repository, *borrower.Borrower) error) error) *UoW {
	m.WithinBorrowerFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Failing returns a UoW whose every call fails with err.
func Failing(err error) *UoW {
	return New().WithWithinBorrower(func(context.Context, string, func(borrower.Repository, *borrower.Borrower) error) error {
		return err
	})
}

// Methods implementing UnitOfWork
func (m *UoW) WithinBorrower(ctx context.Context, borrowerID string, fn func(r borrower.Repository, b *borrower.Borrower) error) error {
	if m.WithinBorrowerFn != nil {
		return m.WithinBorrowerFn(ctx, borrowerID, fn)
	}
	return errUnimplemented
}
