package ledger

import (
	"fmt"
	"time"

	"agri-credit-engine/internal/domain/apperr"
)

type Kind string

const (
	KindDeposit      Kind = "deposit"
	KindFee          Kind = "fee"
	KindDisbursement Kind = "disbursement"
	KindRepayment    Kind = "repayment"
	KindRejection    Kind = "rejection"
)

// Repayment tags.
const (
	TagOnTime = "on_time"
	TagLate   = "late"
)

var (
	ErrExceedsRemainingBalance = fmt.Errorf("%w: amount exceeds remaining balance", apperr.ErrValidation)
	ErrInsufficientFunds       = fmt.Errorf("%w: amount exceeds borrower balance", apperr.ErrInsufficientFunds)
	ErrNonPositiveAmount       = fmt.Errorf("%w: amount must be positive", apperr.ErrValidation)
	ErrDuplicateEntry          = fmt.Errorf("%w: entry id already used by another event", apperr.ErrStateConflict)
)

// Entry is one immutable signed event on a borrower's cash balance.
// Amounts are minor units seen from the borrower: money in is positive.
type Entry struct {
	ID         string    `json:"id"`
	BorrowerID string    `json:"borrower_id"`
	Amount     int64     `json:"amount"`
	Kind       Kind      `json:"kind"`
	LoanID     string    `json:"loan_id,omitempty"`
	Tag        string    `json:"tag,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
