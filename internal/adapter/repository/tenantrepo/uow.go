package tenantrepo

import (
	"context"
	"errors"

	"agri-credit-engine/internal/domain/apperr"
	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/domain/tenant"
	"agri-credit-engine/internal/domain/uow"
)

var _ uow.UnitOfWork = (*CASUoW)(nil)

type CASUoW struct {
	repo        borrower.Repository
	maxAttempts int
}

func NewCASUoW(repo borrower.Repository, maxAttempts int) *CASUoW {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CASUoW{repo: repo, maxAttempts: maxAttempts}
}

func (u *CASUoW) WithinBorrower(ctx context.Context, borrowerID string, fn func(r borrower.Repository, b *borrower.Borrower) error) error {
	for attempt := 1; ; attempt++ {
		b, err := u.repo.GetByID(ctx, borrowerID)
		if err != nil {
			return err
		}
		if err := fn(u.repo, b); err != nil {
			return err
		}
		err = u.repo.Save(ctx, b)
		if !errors.Is(err, tenant.ErrVersionConflict) {
			return err
		}
		if attempt >= u.maxAttempts {
			return apperr.ErrConcurrentUpdate
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
