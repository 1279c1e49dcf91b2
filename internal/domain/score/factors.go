package score

import (
	"fmt"

	"agri-credit-engine/internal/domain/apperr"
)

type (
	PaymentHistory    string
	CropYield         string
	LandOwnership     string
	FarmingExperience string
	ExistingLoans     string
	MarketVolatility  string
	LandSize          string
	WeatherRisk       string
	IncomeStability   string
	Insurance         string
)

const (
	PaymentGood PaymentHistory = "good"
	PaymentFair PaymentHistory = "fair"
	PaymentPoor PaymentHistory = "poor"
	PaymentNone PaymentHistory = "none"

	YieldHigh   CropYield = "high"
	YieldMedium CropYield = "medium"
	YieldLow    CropYield = "low"

	LandOwned  LandOwnership = "owned"
	LandLeased LandOwnership = "leased"
	LandNone   LandOwnership = "none"

	ExperienceExpert       FarmingExperience = "expert"
	ExperienceIntermediate FarmingExperience = "intermediate"
	ExperienceBeginner     FarmingExperience = "beginner"

	LoansNone ExistingLoans = "none"
	LoansLow  ExistingLoans = "low"
	LoansHigh ExistingLoans = "high"

	MarketStable   MarketVolatility = "stable"
	MarketModerate MarketVolatility = "moderate"
	MarketVolatile MarketVolatility = "volatile"

	SizeLarge  LandSize = "large"
	SizeMedium LandSize = "medium"
	SizeSmall  LandSize = "small"

	WeatherMinimal  WeatherRisk = "minimal"
	WeatherModerate WeatherRisk = "moderate"
	WeatherSevere   WeatherRisk = "severe"

	IncomeStable    IncomeStability = "stable"
	IncomeSeasonal  IncomeStability = "seasonal"
	IncomeIrregular IncomeStability = "irregular"

	InsuranceHigh  Insurance = "high"
	InsuranceBasic Insurance = "basic"
	InsuranceNone  Insurance = "none"
)

// Factors is the fixed set of categorical inputs of one scoring request.
type Factors struct {
	PaymentHistory    PaymentHistory    `json:"payment_history"    validate:"required,oneof=good fair poor none"`
	CropYield         CropYield         `json:"crop_yield"         validate:"required,oneof=high medium low"`
	LandOwnership     LandOwnership     `json:"land_ownership"     validate:"required,oneof=owned leased none"`
	FarmingExperience FarmingExperience `json:"farming_experience" validate:"required,oneof=expert intermediate beginner"`
	ExistingLoans     ExistingLoans     `json:"existing_loans"     validate:"required,oneof=none low high"`
	MarketVolatility  MarketVolatility  `json:"market_volatility"  validate:"required,oneof=stable moderate volatile"`
	LandSize          LandSize          `json:"land_size"          validate:"required,oneof=large medium small"`
	WeatherRisk       WeatherRisk       `json:"weather_risk"       validate:"required,oneof=minimal moderate severe"`
	IncomeStability   IncomeStability   `json:"income_stability"   validate:"required,oneof=stable seasonal irregular"`
	Insurance         Insurance         `json:"insurance"          validate:"required,oneof=high basic none"`
}

// signal is the contribution of one enum value.
type signal struct {
	delta int
	// label is set only for values that raise risk.
	label string
}

var (
	paymentSignals = map[PaymentHistory]signal{
		PaymentGood: {delta: 150},
		PaymentFair: {delta: 50},
		PaymentPoor: {delta: -100, label: "Poor payment history"},
		PaymentNone: {delta: -25, label: "No repayment history"},
	}
	yieldSignals = map[CropYield]signal{
		YieldHigh:   {delta: 100},
		YieldMedium: {delta: 40},
		YieldLow:    {delta: -75, label: "Low crop yield"},
	}
	landSignals = map[LandOwnership]signal{
		LandOwned:  {delta: 60},
		LandLeased: {delta: 20},
		LandNone:   {delta: -40, label: "No land ownership"},
	}
	experienceSignals = map[FarmingExperience]signal{
		ExperienceExpert:       {delta: 50},
		ExperienceIntermediate: {delta: 25},
		ExperienceBeginner:     {delta: -20, label: "Limited farming experience"},
	}
	loanSignals = map[ExistingLoans]signal{
		LoansNone: {delta: 100},
		LoansLow:  {delta: 30},
		LoansHigh: {delta: -100, label: "High existing loan burden"},
	}
	marketSignals = map[MarketVolatility]signal{
		MarketStable:   {delta: 40},
		MarketModerate: {delta: 0},
		MarketVolatile: {delta: -50, label: "Volatile market conditions"},
	}
	sizeSignals = map[LandSize]signal{
		SizeLarge:  {delta: 40},
		SizeMedium: {delta: 20},
		SizeSmall:  {delta: -10, label: "Small land holding"},
	}
	weatherSignals = map[WeatherRisk]signal{
		WeatherMinimal:  {delta: 40},
		WeatherModerate: {delta: 0},
		WeatherSevere:   {delta: -60, label: "Severe weather exposure"},
	}
	incomeSignals = map[IncomeStability]signal{
		IncomeStable:    {delta: 50},
		IncomeSeasonal:  {delta: 10},
		IncomeIrregular: {delta: -50, label: "Irregular income"},
	}
	insuranceSignals = map[Insurance]signal{
		InsuranceHigh:  {delta: 40},
		InsuranceBasic: {delta: 15},
		InsuranceNone:  {delta: -30, label: "No insurance coverage"},
	}
)

// signals returns the per-factor contributions in declaration order.
// Unknown values contribute nothing.
func (f Factors) signals() []signal {
	return []signal{
		paymentSignals[f.PaymentHistory],
		yieldSignals[f.CropYield],
		landSignals[f.LandOwnership],
		experienceSignals[f.FarmingExperience],
		loanSignals[f.ExistingLoans],
		marketSignals[f.MarketVolatility],
		sizeSignals[f.LandSize],
		weatherSignals[f.WeatherRisk],
		incomeSignals[f.IncomeStability],
		insuranceSignals[f.Insurance],
	}
}

// Validate rejects values outside the declared enums.
func (f Factors) Validate() error {
	checks := []struct {
		name string
		ok   bool
		val  string
	}{
		{"payment_history", has(paymentSignals, f.PaymentHistory), string(f.PaymentHistory)},
		{"crop_yield", has(yieldSignals, f.CropYield), string(f.CropYield)},
		{"land_ownership", has(landSignals, f.LandOwnership), string(f.LandOwnership)},
		{"farming_experience", has(experienceSignals, f.FarmingExperience), string(f.FarmingExperience)},
		{"existing_loans", has(loanSignals, f.ExistingLoans), string(f.ExistingLoans)},
		{"market_volatility", has(marketSignals, f.MarketVolatility), string(f.MarketVolatility)},
		{"land_size", has(sizeSignals, f.LandSize), string(f.LandSize)},
		{"weather_risk", has(weatherSignals, f.WeatherRisk), string(f.WeatherRisk)},
		{"income_stability", has(incomeSignals, f.IncomeStability), string(f.IncomeStability)},
		{"insurance", has(insuranceSignals, f.Insurance), string(f.Insurance)},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: unknown %s %q", apperr.ErrValidation, c.name, c.val)
		}
	}
	return nil
}

func has[K comparable](m map[K]signal, k K) bool {
	_, ok := m[k]
	return ok
}
