package ledger

// Ledger is the append-only entry log of one borrower.
type Ledger struct {
	Entries []Entry `json:"entries"`
}

// Append adds e unless an entry with the same id is already present.
// It reports whether the ledger changed.
func (l *Ledger) Append(e Entry) bool {
	if l.Has(e.ID) {
		return false
	}
	l.Entries = append(l.Entries, e)
	return true
}

func (l Ledger) Has(entryID string) bool {
	_, ok := l.Find(entryID)
	return ok
}

func (l Ledger) Find(entryID string) (Entry, bool) {
	for _, e := range l.Entries {
		if e.ID == entryID {
			return e, true
		}
	}
	return Entry{}, false
}

// Balance is the signed sum of every entry.
func (l Ledger) Balance() int64 {
	var sum int64
	for _, e := range l.Entries {
		sum += e.Amount
	}
	return sum
}

// RepaidFor sums the repayments posted against loanID, as a positive value.
func (l Ledger) RepaidFor(loanID string) int64 {
	var sum int64
	for _, e := range l.Entries {
		if e.Kind == KindRepayment && e.LoanID == loanID {
			sum -= e.Amount
		}
	}
	return sum
}

// ForLoan returns the entries related to loanID in posting order.
func (l Ledger) ForLoan(loanID string) []Entry {
	var out []Entry
	for _, e := range l.Entries {
		if e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out
}

// RemainingBalance is requested minus repaid, floored at zero.
func RemainingBalance(requested, repaid int64) int64 {
	return max(requested-repaid, 0)
}

// FeeFor returns the fee actually chargeable so the balance never goes
// negative because of it.
func (l Ledger) FeeFor(fee int64) int64 {
	return min(fee, max(l.Balance(), 0))
}

// CheckRepayment validates amount against the loan's remaining balance and
// the borrower's cash.
func (l Ledger) CheckRepayment(loanID string, requested, amount int64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if amount > RemainingBalance(requested, l.RepaidFor(loanID)) {
		return ErrExceedsRemainingBalance
	}
	if amount > l.Balance() {
		return ErrInsufficientFunds
	}
	return nil
}
