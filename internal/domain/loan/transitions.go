package loan

import "time"

var forward = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusRepaid},
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, s := range forward[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return len(forward[s]) == 0 }

// Approve moves a pending application to approved and starts its term.
func (a *Application) Approve(at time.Time, verifierID string, term time.Duration) error {
	if !CanTransition(a.Status, StatusApproved) {
		return ErrAlreadyDecided
	}
	due := at.Add(term)
	a.Status = StatusApproved
	a.DecidedAt = &at
	a.DecidedBy = verifierID
	a.DueAt = &due
	return nil
}

func (a *Application) Reject(at time.Time, verifierID string) error {
	if !CanTransition(a.Status, StatusRejected) {
		return ErrAlreadyDecided
	}
	a.Status = StatusRejected
	a.DecidedAt = &at
	a.DecidedBy = verifierID
	return nil
}

// ApplyRepayment records amount against the application. Crossing the
// requested amount moves it to repaid. It reports whether the payment was
// made by the due date.
func (a *Application) ApplyRepayment(amount int64, at time.Time) (onTime bool, err error) {
	if a.Status != StatusApproved {
		return false, ErrInvalidState
	}
	a.AmountRepaid = min(a.AmountRepaid+amount, a.RequestedAmount)
	a.PaymentsMade++
	a.LastPaymentAt = &at
	if a.AmountRepaid >= a.RequestedAmount {
		a.Status = StatusRepaid
	}
	return a.DueAt == nil || !at.After(*a.DueAt), nil
}

func (a *Application) SelectLender(lender string) error {
	if lender == "" {
		return ErrMissingLenderArg
	}
	if a.Status != StatusApproved {
		return ErrInvalidState
	}
	a.Lender = lender
	return nil
}

// Deletable reports whether the borrower may still withdraw the application.
func (a Application) Deletable() bool { return a.Status == StatusPending }
