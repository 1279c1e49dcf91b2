package loan

import (
	"time"

	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/domain/ledger"
	domain "agri-credit-engine/internal/domain/loan"
)

type RegisterInput struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Region         string `json:"region"`
	OpeningBalance int64  `json:"opening_balance"`
}

type DepositInput struct {
	// EntryID makes the deposit idempotent; generated when empty.
	EntryID string `json:"entry_id"`
	Amount  int64  `json:"amount"`
}

type ProfileInput struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

type SubmitInput struct {
	// ApplicationID lets a client retry a submission safely; generated when empty.
	ApplicationID string `json:"application_id"`
	Amount        int64  `json:"amount"`
	Purpose       string `json:"purpose"`
}

type DecideInput struct {
	Outcome    string `json:"outcome"`
	VerifierID string `json:"-"`
}

type RepayInput struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

type ApplicationDTO struct {
	domain.Application
	RemainingBalance int64 `json:"remaining_balance"`
}

type BorrowerDTO struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Region       string               `json:"region"`
	Balance      int64                `json:"balance"`
	Assessment   *borrower.Assessment `json:"assessment,omitempty"`
	Applications []ApplicationDTO     `json:"applications"`
	Ledger       []ledger.Entry       `json:"ledger"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func toApplicationDTO(b *borrower.Borrower, a *domain.Application) *ApplicationDTO {
	return &ApplicationDTO{
		Application:      *a,
		RemainingBalance: ledger.RemainingBalance(a.RequestedAmount, b.Ledger.RepaidFor(a.ID)),
	}
}

func toBorrowerDTO(b *borrower.Borrower) *BorrowerDTO {
	apps := make([]ApplicationDTO, 0, len(b.Applications))
	for i := range b.Applications {
		apps = append(apps, *toApplicationDTO(b, &b.Applications[i]))
	}
	entries := b.Ledger.Entries
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return &BorrowerDTO{
		ID:           b.ID,
		Email:        b.Email,
		Name:         b.Name,
		Region:       b.Region,
		Balance:      b.Balance(),
		Assessment:   b.Assessment,
		Applications: apps,
		Ledger:       entries,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
