package tenantrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agri-credit-engine/internal/domain/apperr"
	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/domain/loan"
	"agri-credit-engine/internal/domain/tenant"
)

// Secondary index namespaces. Each index record holds a single key.
const (
	borrowerIDPrefix  = "borrower-id:"
	applicationPrefix = "application:"
)

// ErrIndexTaken reports an identifier already bound to another record.
var ErrIndexTaken = fmt.Errorf("%w: identifier already in use", apperr.ErrStateConflict)

type BorrowerRepository struct{ store tenant.Store }

func NewBorrowerRepository(s tenant.Store) *BorrowerRepository {
	return &BorrowerRepository{store: s}
}

// Create writes the id index before the record, so a stored borrower is
// always reachable by id. An index left by a failed create is ignored by
// GetByID.
func (r *BorrowerRepository) Create(ctx context.Context, b *borrower.Borrower) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	if err := r.putIndex(ctx, borrowerIDPrefix+b.ID, b.Key()); err != nil {
		return err
	}
	v, err := r.store.Put(ctx, b.Key(), data, 0)
	if errors.Is(err, tenant.ErrVersionConflict) {
		return borrower.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	b.Version = v
	return nil
}

func (r *BorrowerRepository) GetByEmail(ctx context.Context, email string) (*borrower.Borrower, error) {
	return r.load(ctx, borrower.Key(email))
}

func (r *BorrowerRepository) GetByID(ctx context.Context, id string) (*borrower.Borrower, error) {
	key, err := r.readIndex(ctx, borrowerIDPrefix+id)
	if err != nil {
		return nil, borrower.ErrNotFound
	}
	b, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if b.ID != id {
		// index left behind by a registration whose email was taken
		return nil, borrower.ErrNotFound
	}
	return b, nil
}

func (r *BorrowerRepository) Save(ctx context.Context, b *borrower.Borrower) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	v, err := r.store.Put(ctx, b.Key(), data, b.Version)
	if err != nil {
		return err
	}
	b.Version = v
	return nil
}

func (r *BorrowerRepository) IndexApplication(ctx context.Context, applicationID, borrowerID string) error {
	return r.putIndex(ctx, applicationPrefix+applicationID, borrowerID)
}

func (r *BorrowerRepository) BorrowerIDForApplication(ctx context.Context, applicationID string) (string, error) {
	id, err := r.readIndex(ctx, applicationPrefix+applicationID)
	if err != nil {
		return "", loan.ErrNotFound
	}
	return id, nil
}

func (r *BorrowerRepository) Each(ctx context.Context, fn func(b *borrower.Borrower) error) error {
	return r.store.ScanByPrefix(ctx, borrower.KeyPrefix, func(rec tenant.Record) error {
		b, err := decode(rec)
		if err != nil {
			return err
		}
		return fn(b)
	})
}

func (r *BorrowerRepository) load(ctx context.Context, key string) (*borrower.Borrower, error) {
	rec, err := r.store.Get(ctx, key)
	if errors.Is(err, tenant.ErrRecordNotFound) {
		return nil, borrower.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(rec)
}

func decode(rec tenant.Record) (*borrower.Borrower, error) {
	var b borrower.Borrower
	if err := json.Unmarshal(rec.Data, &b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Key, err)
	}
	b.Version = rec.Version
	return &b, nil
}

// putIndex creates an index record; re-creating it with the same target is
// a no-op.
func (r *BorrowerRepository) putIndex(ctx context.Context, key, target string) error {
	_, err := r.store.Put(ctx, key, []byte(target), 0)
	if !errors.Is(err, tenant.ErrVersionConflict) {
		return err
	}
	cur, rerr := r.readIndex(ctx, key)
	if rerr != nil {
		return rerr
	}
	if cur != target {
		return ErrIndexTaken
	}
	return nil
}

func (r *BorrowerRepository) readIndex(ctx context.Context, key string) (string, error) {
	rec, err := r.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(rec.Data), nil
}
