package borrower

import (
	"slices"
	"strings"
	"time"

	"agri-credit-engine/internal/domain/ledger"
	"agri-credit-engine/internal/domain/loan"
	"agri-credit-engine/internal/domain/score"
	"agri-credit-engine/pkg/id"
)

// Entry id prefixes. Engine-derived entries and client-chosen ids live in
// separate namespaces so a client id can never shadow an engine entry.
const (
	feeEntry          = "fee"
	disbursementEntry = "dsb"
	rejectionEntry    = "rej"
	openingEntry      = "opn"
	depositEntry      = "dep"
	paymentEntry      = "pay"
)

// Deposit credits the borrower's cash. A repeated entryID is a no-op.
func (b *Borrower) Deposit(entryID string, amount int64, at time.Time) (bool, error) {
	return b.credit(id.NewEntryID(depositEntry, entryID), amount, at)
}

// Open credits the opening balance taken at registration.
func (b *Borrower) Open(amount int64, at time.Time) error {
	_, err := b.credit(id.NewEntryID(openingEntry, b.ID), amount, at)
	return err
}

func (b *Borrower) credit(entryID string, amount int64, at time.Time) (bool, error) {
	if amount <= 0 {
		return false, ledger.ErrNonPositiveAmount
	}
	changed := b.Ledger.Append(ledger.Entry{
		ID:         entryID,
		BorrowerID: b.ID,
		Amount:     amount,
		Kind:       ledger.KindDeposit,
		CreatedAt:  at,
	})
	if changed {
		b.UpdatedAt = at
	}
	return changed, nil
}

// Assess scores f and keeps the result as the borrower's current assessment.
func (b *Borrower) Assess(f score.Factors, at time.Time) (score.Result, error) {
	if err := f.Validate(); err != nil {
		return score.Result{}, err
	}
	r := score.Evaluate(f)
	b.Assessment = &Assessment{Factors: f, Result: r, AssessedAt: at}
	b.UpdatedAt = at
	return r, nil
}

func (b *Borrower) UpdateProfile(name, region string, at time.Time) {
	if name = strings.TrimSpace(name); name != "" {
		b.Name = name
	}
	if region = strings.ToLower(strings.TrimSpace(region)); region != "" {
		b.Region = region
	}
	b.UpdatedAt = at
}

// riskScore maps the current assessment onto [0,1], 1 being the riskiest.
// Unassessed borrowers carry maximum risk.
func (b *Borrower) riskScore() float64 {
	if b.Assessment == nil {
		return 1
	}
	return 1 - b.Assessment.Result.Assessment
}

func (b *Borrower) meetsThreshold(p Policy) bool {
	return b.Assessment != nil && b.Assessment.Result.Normalized >= p.ApprovalThreshold
}

// Submit creates a pending application and charges the processing fee.
func (b *Borrower) Submit(appID string, amount int64, purpose string, at time.Time, p Policy) (*loan.Application, error) {
	if amount <= 0 {
		return nil, loan.ErrInvalidAmount
	}
	purpose = strings.ToLower(strings.TrimSpace(purpose))
	if !loan.ValidPurpose(purpose) {
		return nil, loan.ErrUnknownPurpose
	}
	if p.EnforceCeiling && b.Assessment != nil && amount > b.Assessment.Result.EligibleCeiling {
		return nil, loan.ErrExceedsCeiling
	}
	if existing := b.Application(appID); existing != nil {
		return existing, nil
	}
	feeID := id.NewEntryID(feeEntry, appID)
	if b.Ledger.Has(feeID) {
		// a withdrawn application keeps its fee; its id cannot be reused
		return nil, loan.ErrIDReused
	}

	b.Applications = append(b.Applications, loan.Application{
		ID:              appID,
		BorrowerID:      b.ID,
		RequestedAmount: amount,
		Purpose:         purpose,
		Status:          loan.StatusPending,
		RiskScore:       b.riskScore(),
		SubmittedAt:     at,
	})
	b.Ledger.Append(ledger.Entry{
		ID:         feeID,
		BorrowerID: b.ID,
		Amount:     -b.Ledger.FeeFor(p.ProcessingFee),
		Kind:       ledger.KindFee,
		LoanID:     appID,
		CreatedAt:  at,
	})
	b.UpdatedAt = at
	return b.Application(appID), nil
}

// Decide applies a verifier's outcome. Approval requires the stored
// assessment to reach the policy threshold.
func (b *Borrower) Decide(appID string, outcome loan.Outcome, verifierID string, at time.Time, p Policy) (*loan.Application, error) {
	a := b.Application(appID)
	if a == nil {
		return nil, loan.ErrNotFound
	}

	switch outcome {
	case loan.OutcomeApprove:
		if a.Status == loan.StatusPending && !b.meetsThreshold(p) {
			return nil, loan.ErrBelowThreshold
		}
		if err := a.Approve(at, verifierID, p.LoanTerm); err != nil {
			return nil, err
		}
		b.Ledger.Append(ledger.Entry{
			ID:         id.NewEntryID(disbursementEntry, appID),
			BorrowerID: b.ID,
			Amount:     a.RequestedAmount,
			Kind:       ledger.KindDisbursement,
			LoanID:     appID,
			CreatedAt:  at,
		})
	case loan.OutcomeReject:
		if err := a.Reject(at, verifierID); err != nil {
			return nil, err
		}
		b.Ledger.Append(ledger.Entry{
			ID:         id.NewEntryID(rejectionEntry, appID),
			BorrowerID: b.ID,
			Kind:       ledger.KindRejection,
			LoanID:     appID,
			CreatedAt:  at,
		})
	default:
		return nil, loan.ErrUnknownOutcome
	}
	b.UpdatedAt = at
	return a, nil
}

// Repay posts a repayment of amount against appID. A paymentID already
// recorded for appID returns the application unchanged; one recorded for a
// different loan is rejected. repaid reports whether this call retired the
// loan.
func (b *Borrower) Repay(appID, paymentID string, amount int64, at time.Time) (a *loan.Application, repaid bool, err error) {
	a = b.Application(appID)
	if a == nil {
		return nil, false, loan.ErrNotFound
	}
	if paymentID == "" {
		paymentID = id.NewID32()
	}
	entryID := id.NewEntryID(paymentEntry, paymentID)
	if prev, ok := b.Ledger.Find(entryID); ok {
		if prev.Kind == ledger.KindRepayment && prev.LoanID == appID {
			return a, false, nil
		}
		return nil, false, ledger.ErrDuplicateEntry
	}
	if a.Status != loan.StatusApproved {
		return nil, false, loan.ErrInvalidState
	}
	if err := b.Ledger.CheckRepayment(appID, a.RequestedAmount, amount); err != nil {
		return nil, false, err
	}
	onTime, err := a.ApplyRepayment(amount, at)
	if err != nil {
		return nil, false, err
	}

	tag := ledger.TagOnTime
	if !onTime {
		tag = ledger.TagLate
	}
	b.Ledger.Append(ledger.Entry{
		ID:         entryID,
		BorrowerID: b.ID,
		Amount:     -amount,
		Kind:       ledger.KindRepayment,
		LoanID:     appID,
		Tag:        tag,
		CreatedAt:  at,
	})
	b.UpdatedAt = at
	return a, a.Status == loan.StatusRepaid, nil
}

// DeletePending withdraws a pending application. Only its borrower may do it,
// and the fee already charged stays in the ledger.
func (b *Borrower) DeletePending(appID, actorID string, at time.Time) error {
	a := b.Application(appID)
	if a == nil {
		return loan.ErrNotFound
	}
	if actorID != b.ID {
		return loan.ErrNotOwner
	}
	if !a.Deletable() {
		return loan.ErrInvalidState
	}
	b.Applications = slices.DeleteFunc(b.Applications, func(x loan.Application) bool { return x.ID == appID })
	b.UpdatedAt = at
	return nil
}

func (b *Borrower) SelectLender(appID, actorID, lender string, at time.Time) (*loan.Application, error) {
	a := b.Application(appID)
	if a == nil {
		return nil, loan.ErrNotFound
	}
	if actorID != b.ID {
		return nil, loan.ErrNotOwner
	}
	if err := a.SelectLender(strings.TrimSpace(lender)); err != nil {
		return nil, err
	}
	b.UpdatedAt = at
	return a, nil
}
