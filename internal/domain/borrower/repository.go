package borrower

import "context"

type Repository interface {
	// Create stores a new borrower (fails with ErrEmailTaken on a known email)
	Create(ctx context.Context, b *Borrower) error

	GetByID(ctx context.Context, id string) (*Borrower, error)
	GetByEmail(ctx context.Context, email string) (*Borrower, error)

	// Save writes b back only if the stored version still equals b.Version
	Save(ctx context.Context, b *Borrower) error

	// Application index: application id -> borrower id
	IndexApplication(ctx context.Context, applicationID, borrowerID string) error
	BorrowerIDForApplication(ctx context.Context, applicationID string) (string, error)

	// Each streams every borrower record in key order
	Each(ctx context.Context, fn func(b *Borrower) error) error
}
