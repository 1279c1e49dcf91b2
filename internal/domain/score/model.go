package score

import "math"

type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

type Likelihood string

const (
	LikelihoodHigh   Likelihood = "high"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodLow    Likelihood = "low"
)

const (
	BaseScore = 500
	MinScore  = 300
	MaxScore  = 850

	lowRiskFrom  = 700
	highRiskUpTo = 550 // exclusive
)

// Eligible ceilings per tier, in minor currency units.
const (
	CeilingLow    int64 = 500_000
	CeilingMedium int64 = 200_000
	CeilingHigh   int64 = 10_000
)

// Result is the outcome of scoring one set of Factors.
type Result struct {
	Score               int        `json:"score"`
	RiskTier            RiskTier   `json:"risk_tier"`
	EligibleCeiling     int64      `json:"eligible_ceiling"`
	ContributingFactors []string   `json:"contributing_factors"`
	ApprovalLikelihood  Likelihood `json:"approval_likelihood"`
	// Assessment is the score mapped onto [0,1].
	Assessment float64 `json:"assessment"`
	// Normalized is round(Assessment*100), the value the approval gate reads.
	Normalized int `json:"normalized"`
}

// Evaluate scores f. It never fails and always returns the same Result for
// the same input.
func Evaluate(f Factors) Result {
	total := BaseScore
	contributing := []string{}
	for _, s := range f.signals() {
		total += s.delta
		if s.label != "" {
			contributing = append(contributing, s.label)
		}
	}
	total = min(max(total, MinScore), MaxScore)

	tier := TierFor(total)
	assessment := float64(total-MinScore) / float64(MaxScore-MinScore)
	return Result{
		Score:               total,
		RiskTier:            tier,
		EligibleCeiling:     CeilingFor(tier),
		ContributingFactors: contributing,
		ApprovalLikelihood:  likelihoodFor(tier),
		Assessment:          assessment,
		Normalized:          int(math.Round(assessment * 100)),
	}
}

func TierFor(score int) RiskTier {
	switch {
	case score >= lowRiskFrom:
		return TierLow
	case score < highRiskUpTo:
		return TierHigh
	default:
		return TierMedium
	}
}

func CeilingFor(t RiskTier) int64 {
	switch t {
	case TierLow:
		return CeilingLow
	case TierMedium:
		return CeilingMedium
	default:
		return CeilingHigh
	}
}

func likelihoodFor(t RiskTier) Likelihood {
	switch t {
	case TierLow:
		return LikelihoodHigh
	case TierHigh:
		return LikelihoodLow
	default:
		return LikelihoodMedium
	}
}
