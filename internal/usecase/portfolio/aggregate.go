package portfolio

import (
	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/domain/ledger"
	"agri-credit-engine/internal/domain/loan"

	"github.com/shopspring/decimal"
)

const (
	highRiskAbove = 0.7
	lowRiskUpTo   = 0.3

	unknownRegion = "unknown"
	monthLayout   = "2006-01"
	secondsPerDay = 24 * 60 * 60
)

// Accumulator folds borrowers into a Snapshot one at a time so a full scan
// never holds more than one record.
type Accumulator struct {
	s Snapshot

	repaidLoans    int64
	secondsToRepay int64
}

func NewAccumulator() *Accumulator {
	byStatus := make(map[string]int, len(loan.Statuses))
	for _, st := range loan.Statuses {
		byStatus[string(st)] = 0
	}
	return &Accumulator{s: Snapshot{
		ByStatus:  byStatus,
		ByPurpose: map[string]Distribution{},
		ByMonth:   map[string]Distribution{},
		ByRegion:  map[string]Distribution{},
	}}
}

func (a *Accumulator) Add(b *borrower.Borrower) {
	a.s.BorrowerCount++
	region := b.Region
	if region == "" {
		region = unknownRegion
	}

	for _, app := range b.Applications {
		a.s.TotalLoans++
		a.s.TotalAmount += app.RequestedAmount
		a.s.ByStatus[string(app.Status)]++
		add(a.s.ByPurpose, app.Purpose, app.RequestedAmount)
		add(a.s.ByMonth, app.SubmittedAt.UTC().Format(monthLayout), app.RequestedAmount)
		add(a.s.ByRegion, region, app.RequestedAmount)

		switch {
		case app.RiskScore > highRiskAbove:
			a.s.Risk.High++
		case app.RiskScore <= lowRiskUpTo:
			a.s.Risk.Low++
		default:
			a.s.Risk.Medium++
		}

		if app.Status == loan.StatusApproved {
			a.s.TotalOutstanding += ledger.RemainingBalance(app.RequestedAmount, b.Ledger.RepaidFor(app.ID))
		}
		if app.Status == loan.StatusRepaid && app.LastPaymentAt != nil {
			a.repaidLoans++
			a.secondsToRepay += int64(app.LastPaymentAt.Sub(app.SubmittedAt).Seconds())
		}
	}

	for _, e := range b.Ledger.Entries {
		switch e.Kind {
		case ledger.KindDisbursement:
			a.s.TotalDisbursed += e.Amount
		case ledger.KindRepayment:
			a.s.TotalRepaid -= e.Amount
			switch e.Tag {
			case ledger.TagOnTime:
				a.s.Payments.OnTime++
			case ledger.TagLate:
				a.s.Payments.Late++
			}
		}
	}
}

// Snapshot finalises the derived ratios. The accumulator may keep adding
// borrowers afterwards.
func (a *Accumulator) Snapshot() Snapshot {
	s := a.s
	s.ByStatus = clone(a.s.ByStatus)
	s.ByPurpose = clone(a.s.ByPurpose)
	s.ByMonth = clone(a.s.ByMonth)
	s.ByRegion = clone(a.s.ByRegion)

	approved := int64(s.ByStatus[string(loan.StatusApproved)] + s.ByStatus[string(loan.StatusRepaid)])
	rejected := int64(s.ByStatus[string(loan.StatusRejected)])
	repaid := int64(s.ByStatus[string(loan.StatusRepaid)])
	total := int64(s.TotalLoans)

	s.ApprovalRate = rate(approved, approved+rejected)
	s.RepaymentRate = rate(repaid, total)
	if total > 0 {
		s.AverageLoanAmount = s.TotalAmount / total
	}
	s.Payments.OnTimeRate = rate(int64(s.Payments.OnTime), int64(s.Payments.OnTime+s.Payments.Late))
	if a.repaidLoans > 0 {
		s.AverageDaysToRepay = decimal.NewFromInt(a.secondsToRepay).
			Div(decimal.NewFromInt(a.repaidLoans * secondsPerDay)).
			Round(2).
			InexactFloat64()
	}
	return s
}

// Compute aggregates bs in one pass.
func Compute(bs ...*borrower.Borrower) Snapshot {
	acc := NewAccumulator()
	for _, b := range bs {
		acc.Add(b)
	}
	return acc.Snapshot()
}

func rate(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(num).DivRound(decimal.NewFromInt(den), 4).InexactFloat64()
}

func add(m map[string]Distribution, key string, amount int64) {
	d := m[key]
	d.Count++
	d.Amount += amount
	m[key] = d
}

func clone[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
