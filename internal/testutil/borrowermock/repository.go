package borrowermock

import (
	"context"

	domain "agri-credit-engine/internal/domain/borrower"
)

// Ensure compile-time compliance
var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers are no-ops; unset readers report the record as missing.
type Repo struct {
	CreateFn                   func(ctx context.Context, b *domain.Borrower) error
	GetByIDFn                  func(ctx context.Context, id string) (*domain.Borrower, error)
	GetByEmailFn               func(ctx context.Context, email string) (*domain.Borrower, error)
	SaveFn                     func(ctx context.Context, b *domain.Borrower) error
	IndexApplicationFn         func(ctx context.Context, applicationID, borrowerID string) error
	BorrowerIDForApplicationFn func(ctx context.Context, applicationID string) (string, error)
	EachFn                     func(ctx context.Context, fn func(b *domain.Borrower) error) error
}

func (m *Repo) Create(ctx context.Context, b *domain.Borrower) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Borrower, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.Borrower, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, b *domain.Borrower) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, b)
	}
	return nil
}

func (m *Repo) IndexApplication(ctx context.Context, applicationID, borrowerID string) error {
	if m.IndexApplicationFn != nil {
		return m.IndexApplicationFn(ctx, applicationID, borrowerID)
	}
	return nil
}

func (m *Repo) BorrowerIDForApplication(ctx context.Context, applicationID string) (string, error) {
	if m.BorrowerIDForApplicationFn != nil {
		return m.BorrowerIDForApplicationFn(ctx, applicationID)
	}
	return "", domain.ErrNotFound
}

func (m *Repo) Each(ctx context.Context, fn func(b *domain.Borrower) error) error {
	if m.EachFn != nil {
		return m.EachFn(ctx, fn)
	}
	return nil
}

// Fixed returns a Repo whose Each yields bs in order.
func Fixed(bs ...*domain.Borrower) *Repo {
	return &Repo{EachFn: func(_ context.Context, fn func(*domain.Borrower) error) error {
		for _, b := range bs {
			if err := fn(b); err != nil {
				return err
			}
		}
		return nil
	}}
}
