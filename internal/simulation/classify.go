package simulation

import (
	"fmt"
	"time"

	"tax-credit-model/internal/model"
)

// Tiers maps kg CO2 per kg H2 to a 45V tier, best credit first.
// A ratio qualifies for the first row whose Below it is strictly under.
var Tiers = []struct {
	Below float64
	Tier  model.TaxCredit45VTier
}{
	{0.45, model.TierMax},
	{1.5, model.Tier1},
	{2.5, model.Tier2},
	{4.0, model.Tier3},
}

func mapTier(ratio float64) model.TaxCredit45VTier {
	for _, t := range Tiers {
		if ratio < t.Below {
			return t.Tier
		}
	}
	return model.TierNone
}

// Classify computes the 45V credit for one step. Both events must describe
// the same step; a step that produced no hydrogen has no defined intensity
// and is rejected.
func Classify(emission model.EmissionEvent, production model.HydrogenProductionEvent) (model.TaxCredit45V, error) {
	if !emission.Timestamp.Equal(production.Timestamp) {
		return model.TaxCredit45V{}, fmt.Errorf("emission at %s and production at %s are different steps: %w",
			emission.Timestamp.Format(time.RFC3339), production.Timestamp.Format(time.RFC3339), model.ErrInvalidArgument)
	}
	if production.KgHydrogen <= 0 {
		return model.TaxCredit45V{}, fmt.Errorf("classify step with %.6f kg hydrogen: %w", production.KgHydrogen, model.ErrInvalidArgument)
	}

	tier := mapTier(emission.AmountEmittedKg / production.KgHydrogen)
	return model.TaxCredit45V{
		Tier:     tier,
		TotalUSD: tier.Value() * production.KgHydrogen,
	}, nil
}
