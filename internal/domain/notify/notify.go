package notify

import (
	"context"
	"time"
)

type EventType string

const (
	ApplicationSubmitted EventType = "application_submitted"
	Approved             EventType = "approved"
	Rejected             EventType = "rejected"
	LenderSelected       EventType = "lender_selected"
	ProfileUpdated       EventType = "profile_updated"
	LoanRepaid           EventType = "loan_repaid"
)

type Event struct {
	Type       EventType      `json:"type"`
	BorrowerID string         `json:"borrower_id"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Sink delivers events on a best-effort basis.
type Sink interface {
	Notify(ctx context.Context, e Event) error
}
