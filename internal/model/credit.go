package model

import "fmt"

// MaxCreditUSDPerKg is the full 45V credit per kg of hydrogen.
const MaxCreditUSDPerKg = 3.0

// StepHours is the credit duration one simulation step contributes.
const StepHours = 0.25

// TaxCredit45VTier is the 45V credit band for a CO2/H2 intensity.
// Keep these values stable; they are persisted.
type TaxCredit45VTier string

const (
	TierMax  TaxCredit45VTier = "max"
	Tier1    TaxCredit45VTier = "tier1"
	Tier2    TaxCredit45VTier = "tier2"
	Tier3    TaxCredit45VTier = "tier3"
	TierNone TaxCredit45VTier = "none"
)

// Value is the credit in USD per kg of hydrogen.
func (t TaxCredit45VTier) Value() float64 {
	switch t {
	case TierMax:
		return MaxCreditUSDPerKg
	case Tier1:
		return MaxCreditUSDPerKg * 0.334
	case Tier2:
		return MaxCreditUSDPerKg * 0.25
	case Tier3:
		return MaxCreditUSDPerKg * 0.20
	default:
		return 0
	}
}

// Color is the chart color used when plotting a step of this tier.
func (t TaxCredit45VTier) Color() string {
	switch t {
	case TierMax:
		return "green"
	case Tier1:
		return "#7fff00"
	case Tier2:
		return "yellow"
	case Tier3:
		return "orange"
	default:
		return "red"
	}
}

// Percent is the share of the full credit, as used in histogram keys.
func (t TaxCredit45VTier) Percent() string {
	switch t {
	case TierMax:
		return "100%"
	case Tier1:
		return "33%"
	case Tier2:
		return "25%"
	case Tier3:
		return "20%"
	default:
		return "0%"
	}
}

type TaxCredit45V struct {
	Tier     TaxCredit45VTier `json:"tier" bson:"tier"`
	TotalUSD float64          `json:"total_usd" bson:"total_usd"`
}

// TaxCreditSummary accumulates credit-eligible hours per tier.
type TaxCreditSummary struct {
	CreditHoursFull float64 `json:"credit_hours_full" bson:"credit_hours_full"`
	CreditHours33   float64 `json:"credit_hours_33" bson:"credit_hours_33"`
	CreditHours25   float64 `json:"credit_hours_25" bson:"credit_hours_25"`
	CreditHours20   float64 `json:"credit_hours_20" bson:"credit_hours_20"`
	CreditHoursNone float64 `json:"credit_hours_none" bson:"credit_hours_none"`
}

// Add returns a copy of s with hours added to the bucket for tier.
func (s TaxCreditSummary) Add(tier TaxCredit45VTier, hours float64) (TaxCreditSummary, error) {
	switch tier {
	case TierMax:
		s.CreditHoursFull += hours
	case Tier1:
		s.CreditHours33 += hours
	case Tier2:
		s.CreditHours25 += hours
	case Tier3:
		s.CreditHours20 += hours
	case TierNone:
		s.CreditHoursNone += hours
	default:
		return s, fmt.Errorf("tier %q: %w", tier, ErrInvalidArgument)
	}
	return s, nil
}

// Hours returns the accumulated hours for tier.
func (s TaxCreditSummary) Hours(tier TaxCredit45VTier) float64 {
	switch tier {
	case TierMax:
		return s.CreditHoursFull
	case Tier1:
		return s.CreditHours33
	case Tier2:
		return s.CreditHours25
	case Tier3:
		return s.CreditHours20
	default:
		return s.CreditHoursNone
	}
}
