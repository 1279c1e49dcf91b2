package borrower

import "time"

// Policy carries the lending rules the operations enforce.
type Policy struct {
	ProcessingFee     int64
	ApprovalThreshold int
	LoanTerm          time.Duration
	// EnforceCeiling rejects submissions above the assessed ceiling.
	EnforceCeiling bool
}

func DefaultPolicy() Policy {
	return Policy{
		ProcessingFee:     500,
		ApprovalThreshold: 60,
		LoanTerm:          180 * 24 * time.Hour,
		EnforceCeiling:    true,
	}
}
