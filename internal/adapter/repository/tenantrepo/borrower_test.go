package tenantrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"agri-credit-engine/internal/domain/apperr"
	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/testutil/storemock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bid = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func seed(t *testing.T, repo *BorrowerRepository, id, email string) *borrower.Borrower {
	t.Helper()
	b, err := borrower.New(id, email, "Kofi", "north", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestBorrowerRepository_CreateAndLoad(t *testing.T) {
	store := storemock.New()
	repo := NewBorrowerRepository(store)
	ctx := context.Background()

	b := seed(t, repo, bid, "Kofi@Farm.io")
	assert.Equal(t, int64(1), b.Version)
	assert.Equal(t, []string{"borrower-id:" + bid, "borrower:kofi@farm.io"}, store.Keys())

	byID, err := repo.GetByID(ctx, bid)
	require.NoError(t, err)
	assert.Equal(t, "kofi@farm.io", byID.Email)
	assert.Equal(t, int64(1), byID.Version)

	byEmail, err := repo.GetByEmail(ctx, "KOFI@farm.io")
	require.NoError(t, err)
	assert.Equal(t, bid, byEmail.ID)

	_, err = repo.GetByID(ctx, "unknown")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBorrowerRepository_EmailTaken(t *testing.T) {
	repo := NewBorrowerRepository(storemock.New())
	seed(t, repo, bid, "a@x.io")

	dup, _ := borrower.New("cccccccccccccccccccccccccccccccc", "a@x.io", "", "", time.Now())
	err := repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, borrower.ErrEmailTaken)

	_, err = repo.GetByID(context.Background(), dup.ID)
	assert.ErrorIs(t, err, borrower.ErrNotFound)
}

func TestBorrowerRepository_IndexFailureLeavesEmailFree(t *testing.T) {
	store := storemock.New()
	repo := NewBorrowerRepository(store)
	ctx := context.Background()

	down := errors.New("store down")
	store.BeforePutFn = func(key string, _ int64) error {
		if key == "borrower-id:"+bid {
			return down
		}
		return nil
	}
	b, _ := borrower.New(bid, "a@x.io", "", "", time.Now())
	require.ErrorIs(t, repo.Create(ctx, b), down)
	assert.Empty(t, store.Keys())

	store.BeforePutFn = nil
	seed(t, repo, bid, "a@x.io")
	got, err := repo.GetByID(ctx, bid)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got.Email)
}

func TestBorrowerRepository_SaveChecksVersion(t *testing.T) {
	repo := NewBorrowerRepository(storemock.New())
	ctx := context.Background()
	seed(t, repo, bid, "a@x.io")

	first, _ := repo.GetByID(ctx, bid)
	second, _ := repo.GetByID(ctx, bid)

	first.Name = "first"
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Name = "second"
	err := repo.Save(ctx, second)
	require.Error(t, err)

	got, _ := repo.GetByID(ctx, bid)
	assert.Equal(t, "first", got.Name)
}

func TestBorrowerRepository_ApplicationIndex(t *testing.T) {
	repo := NewBorrowerRepository(storemock.New())
	ctx := context.Background()

	require.NoError(t, repo.IndexApplication(ctx, "app-1", bid))
	require.NoError(t, repo.IndexApplication(ctx, "app-1", bid), "re-indexing is a no-op")
	err := repo.IndexApplication(ctx, "app-1", "someone-else")
	assert.ErrorIs(t, err, ErrIndexTaken)
	assert.ErrorIs(t, err, apperr.ErrStateConflict)
	assert.NotContains(t, err.Error(), bid)

	got, err := repo.BorrowerIDForApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, bid, got)

	_, err = repo.BorrowerIDForApplication(ctx, "app-2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBorrowerRepository_EachSkipsIndexes(t *testing.T) {
	repo := NewBorrowerRepository(storemock.New())
	seed(t, repo, bid, "b@x.io")
	seed(t, repo, "cccccccccccccccccccccccccccccccc", "a@x.io")
	require.NoError(t, repo.IndexApplication(context.Background(), "app-1", bid))

	var emails []string
	err := repo.Each(context.Background(), func(b *borrower.Borrower) error {
		emails = append(emails, b.Email)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, emails)
}

func TestCASUoW_RetriesAfterConflict(t *testing.T) {
	store := storemock.New()
	repo := NewBorrowerRepository(store)
	ctx := context.Background()
	b := seed(t, repo, bid, "a@x.io")

	interfered := false
	store.BeforePutFn = func(key string, expected int64) error {
		if key != b.Key() || expected == 0 || interfered {
			return nil
		}
		interfered = true
		rec, _ := store.Get(ctx, key)
		_, err := store.Put(ctx, key, rec.Data, rec.Version)
		return err
	}

	runs := 0
	err := NewCASUoW(repo, 3).WithinBorrower(ctx, bid, func(_ borrower.Repository, b *borrower.Borrower) error {
		runs++
		_, err := b.Deposit("dep-1", 700, time.Now().UTC())
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, runs)

	got, _ := repo.GetByID(ctx, bid)
	assert.Equal(t, int64(700), got.Balance())
	assert.Equal(t, int64(3), got.Version)
}

func TestCASUoW_GivesUp(t *testing.T) {
	store := storemock.New()
	repo := NewBorrowerRepository(store)
	ctx := context.Background()
	seed(t, repo, bid, "a@x.io")

	// every attempt arms a one-shot competing write
	runs := 0
	err := NewCASUoW(repo, 2).WithinBorrower(ctx, bid, func(_ borrower.Repository, b *borrower.Borrower) error {
		runs++
		store.BeforePutFn = func(key string, expected int64) error {
			if key != b.Key() || expected == 0 {
				return nil
			}
			store.BeforePutFn = nil
			rec, _ := store.Get(ctx, key)
			_, err := store.Put(ctx, key, rec.Data, rec.Version)
			return err
		}
		return nil
	})
	assert.True(t, errors.Is(err, apperr.ErrConcurrentUpdate), "got %v", err)
	assert.Equal(t, 2, runs)
}

func TestCASUoW_FnErrorSkipsSave(t *testing.T) {
	store := storemock.New()
	repo := NewBorrowerRepository(store)
	seed(t, repo, bid, "a@x.io")
	puts := store.Puts

	boom := errors.New("boom")
	err := NewCASUoW(repo, 3).WithinBorrower(context.Background(), bid, func(borrower.Repository, *borrower.Borrower) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, puts, store.Puts)
}
