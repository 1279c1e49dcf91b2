package loan

import (
	"fmt"
	"time"

	"agri-credit-engine/internal/domain/apperr"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusRepaid   Status = "repaid"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusRepaid}

type Outcome string

const (
	OutcomeApprove Outcome = "approve"
	OutcomeReject  Outcome = "reject"
)

// Purposes a loan may be requested for.
var Purposes = []string{"seeds", "fertilizer", "equipment", "irrigation", "livestock", "storage", "labor", "other"}

var (
	ErrNotFound         = fmt.Errorf("%w: loan application not found", apperr.ErrNotFound)
	ErrInvalidState     = fmt.Errorf("%w: operation not allowed in current loan status", apperr.ErrStateConflict)
	ErrAlreadyDecided   = fmt.Errorf("%w: loan application already decided", apperr.ErrStateConflict)
	ErrInvalidAmount    = fmt.Errorf("%w: requested amount must be positive", apperr.ErrValidation)
	ErrUnknownPurpose   = fmt.Errorf("%w: unknown loan purpose", apperr.ErrValidation)
	ErrUnknownOutcome   = fmt.Errorf("%w: unknown decision outcome", apperr.ErrValidation)
	ErrExceedsCeiling   = fmt.Errorf("%w: requested amount exceeds eligible ceiling", apperr.ErrValidation)
	ErrBelowThreshold   = fmt.Errorf("%w: borrower assessment below approval threshold", apperr.ErrThreshold)
	ErrNotOwner         = fmt.Errorf("%w: loan application belongs to another borrower", apperr.ErrForbidden)
	ErrMissingLenderArg = fmt.Errorf("%w: lender is required", apperr.ErrValidation)
	ErrIDReused         = fmt.Errorf("%w: application id belongs to a withdrawn application", apperr.ErrStateConflict)
)

// Application is a single loan request and its repayment progress.
type Application struct {
	ID              string     `json:"id"`
	BorrowerID      string     `json:"borrower_id"`
	RequestedAmount int64      `json:"requested_amount"`
	Purpose         string     `json:"purpose"`
	Status          Status     `json:"status"`
	RiskScore       float64    `json:"risk_score"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	DecidedBy       string     `json:"decided_by,omitempty"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	Lender          string     `json:"lender,omitempty"`
	AmountRepaid    int64      `json:"amount_repaid"`
	PaymentsMade    int        `json:"payments_made"`
	LastPaymentAt   *time.Time `json:"last_payment_at,omitempty"`
}

func ValidPurpose(p string) bool {
	for _, known := range Purposes {
		if p == known {
			return true
		}
	}
	return false
}
