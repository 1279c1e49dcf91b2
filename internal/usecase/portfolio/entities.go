package portfolio

type Distribution struct {
	Count  int   `json:"count"`
	Amount int64 `json:"amount"`
}

// RiskBuckets counts loans by their submission-time risk score.
type RiskBuckets struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type PaymentPerformance struct {
	OnTime     int     `json:"on_time"`
	Late       int     `json:"late"`
	OnTimeRate float64 `json:"on_time_rate"`
}

// Snapshot is a point-in-time aggregate over every borrower's loans.
// Ratios with an empty denominator are reported as 0.
type Snapshot struct {
	BorrowerCount      int                     `json:"borrower_count"`
	TotalLoans         int                     `json:"total_loans"`
	TotalAmount        int64                   `json:"total_amount"`
	ByStatus           map[string]int          `json:"by_status"`
	ApprovalRate       float64                 `json:"approval_rate"`
	RepaymentRate      float64                 `json:"repayment_rate"`
	AverageLoanAmount  int64                   `json:"average_loan_amount"`
	ByPurpose          map[string]Distribution `json:"by_purpose"`
	ByMonth            map[string]Distribution `json:"by_month"`
	ByRegion           map[string]Distribution `json:"by_region"`
	Risk               RiskBuckets             `json:"risk"`
	Payments           PaymentPerformance      `json:"payments"`
	AverageDaysToRepay float64                 `json:"average_days_to_repay"`
	TotalDisbursed     int64                   `json:"total_disbursed"`
	TotalRepaid        int64                   `json:"total_repaid"`
	TotalOutstanding   int64                   `json:"total_outstanding"`
}
