package borrower

import (
	"fmt"
	"strings"
	"time"

	"agri-credit-engine/internal/domain/apperr"
	"agri-credit-engine/internal/domain/ledger"
	"agri-credit-engine/internal/domain/loan"
	"agri-credit-engine/internal/domain/score"
)

// KeyPrefix namespaces borrower records in the tenant store.
const KeyPrefix = "borrower:"

var (
	ErrNotFound     = fmt.Errorf("%w: borrower not found", apperr.ErrNotFound)
	ErrEmailTaken   = fmt.Errorf("%w: email already registered", apperr.ErrStateConflict)
	ErrInvalidEmail = fmt.Errorf("%w: email is required", apperr.ErrValidation)
)

// Assessment is the most recent scoring of a borrower.
type Assessment struct {
	Factors    score.Factors `json:"factors"`
	Result     score.Result  `json:"result"`
	AssessedAt time.Time     `json:"assessed_at"`
}

// Borrower is the whole tenant record: profile, applications and ledger are
// always read and written together.
type Borrower struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Region       string             `json:"region"`
	Assessment   *Assessment        `json:"assessment,omitempty"`
	Applications []loan.Application `json:"applications"`
	Ledger       ledger.Ledger      `json:"ledger"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	// Version is the CAS token of the stored record; zero means not stored yet.
	Version int64 `json:"-"`
}

func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Key is the tenant store key of the borrower with this email.
func Key(email string) string { return KeyPrefix + NormalizeEmail(email) }

func New(id, email, name, region string, at time.Time) (*Borrower, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	return &Borrower{
		ID:           id,
		Email:        email,
		Name:         strings.TrimSpace(name),
		Region:       strings.ToLower(strings.TrimSpace(region)),
		Applications: []loan.Application{},
		CreatedAt:    at,
		UpdatedAt:    at,
	}, nil
}

func (b *Borrower) Key() string { return Key(b.Email) }

// Balance is the borrower's current cash, derived from the ledger.
func (b *Borrower) Balance() int64 { return b.Ledger.Balance() }

// Application returns the application with id, or nil.
func (b *Borrower) Application(id string) *loan.Application {
	for i := range b.Applications {
		if b.Applications[i].ID == id {
			return &b.Applications[i]
		}
	}
	return nil
}

// RemainingBalance is what is still owed on application id, from the ledger.
func (b *Borrower) RemainingBalance(id string) (int64, error) {
	a := b.Application(id)
	if a == nil {
		return 0, loan.ErrNotFound
	}
	return ledger.RemainingBalance(a.RequestedAmount, b.Ledger.RepaidFor(id)), nil
}
