package analysis

import (
	"math"
	"sort"

	"tax-credit-model/internal/model"

	"github.com/shopspring/decimal"
)

// RunStats is a run-level summary used for reporting and ranking.
//
// Intensity is kg CO2 per kg H2 for a single step; the percentiles show how
// far the run sits from a tier boundary, not just its average.
type RunStats struct {
	SimulationID   string `json:"simulation_id"`
	ElectrolyzerID string `json:"electrolyzer_id"`

	Steps int `json:"steps"`

	TotalEmittedKg  float64 `json:"total_emitted_kg"`
	TotalHydrogenKg float64 `json:"total_hydrogen_kg"`
	TotalCreditUSD  float64 `json:"total_credit_usd"`
	TotalCostUSD    float64 `json:"total_cost_usd"`

	MinIntensity  float64 `json:"min_intensity"`
	MaxIntensity  float64 `json:"max_intensity"`
	MeanIntensity float64 `json:"mean_intensity"`
	P05Intensity  float64 `json:"p05_intensity"`
	P95Intensity  float64 `json:"p95_intensity"`

	Summary model.TaxCreditSummary `json:"tax_credit_summary"`
}

func ComputeStats(st *model.SimulationState) RunStats {
	s := RunStats{
		SimulationID:   st.ID,
		ElectrolyzerID: st.ElectrolyzerID,
		Steps:          len(st.Emissions),
		Summary:        st.Summary,
	}

	credit := decimal.Zero
	for _, c := range st.TaxCredits {
		credit = credit.Add(decimal.NewFromFloat(c.TotalUSD))
	}
	s.TotalCreditUSD = credit.InexactFloat64()

	cost := decimal.Zero
	for _, tx := range st.Transactions {
		cost = cost.Add(decimal.NewFromFloat(tx.PriceUSD))
	}
	s.TotalCostUSD = cost.InexactFloat64()

	vals := make([]float64, 0, len(st.Emissions))
	for i, e := range st.Emissions {
		s.TotalEmittedKg += e.AmountEmittedKg
		if i >= len(st.HydrogenProductions) {
			continue
		}
		h := st.HydrogenProductions[i].KgHydrogen
		s.TotalHydrogenKg += h
		if h > 0 {
			vals = append(vals, e.AmountEmittedKg/h)
		}
	}
	if len(vals) == 0 {
		return s
	}

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	for _, v := range vals {
		sum += v
		minv = math.Min(minv, v)
		maxv = math.Max(maxv, v)
	}
	sort.Float64s(vals)
	s.MinIntensity = minv
	s.MaxIntensity = maxv
	s.MeanIntensity = sum / float64(len(vals))
	s.P05Intensity = percentileSorted(vals, 0.05)
	s.P95Intensity = percentileSorted(vals, 0.95)
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
