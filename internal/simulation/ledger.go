package simulation

import (
	"net/url"
	"time"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/model"
)

// LedgerRow is one step of a run, flattened for export.
type LedgerRow struct {
	Index     int
	Timestamp time.Time

	Plants       int
	PurchasedMWh float64
	CostUSD      float64

	EmittedKg  float64
	HydrogenKg float64

	Tier         model.TaxCredit45VTier
	CreditUSD    float64
	CumCreditUSD float64
}

// SeriesRef points at a series the caller fetches separately. Path is the
// API route serving it.
type SeriesRef struct {
	SimulationID string `json:"simulation_id"`
	Kind         string `json:"kind"`
	Path         string `json:"path"`
}

const (
	SeriesEmissions = "emissions"
	SeriesHydrogen  = "hydrogen"
)

func NewSeriesRef(simulationID, kind string) SeriesRef {
	return SeriesRef{
		SimulationID: simulationID,
		Kind:         kind,
		Path:         "/api/v1/simulations/" + url.PathEscape(simulationID) + "/" + kind,
	}
}

// Result is what a run hands back to its caller.
type Result struct {
	SimulationID string                 `json:"simulation_id"`
	Range        model.TimeRange        `json:"range"`
	Steps        int                    `json:"steps"`
	Summary      model.TaxCreditSummary `json:"tax_credit_summary"`
	EnergyCosts  analysis.TimeSeries    `json:"energy_costs"`
	Emissions    SeriesRef              `json:"emissions"`
	Hydrogen     SeriesRef              `json:"hydrogen"`
}

// BuildLedger lines up transactions with the per-step events. Transactions
// are appended in step order, so one pass is enough.
func BuildLedger(st *model.SimulationState) []LedgerRow {
	rows := make([]LedgerRow, 0, len(st.Emissions))
	cum := 0.0
	j := 0
	for i, e := range st.Emissions {
		row := LedgerRow{
			Index:     i,
			Timestamp: e.Timestamp,
			EmittedKg: e.AmountEmittedKg,
		}
		for j < len(st.Transactions) && st.Transactions[j].Timestamp.Equal(e.Timestamp) {
			row.Plants++
			row.PurchasedMWh += st.Transactions[j].Portfolio.TotalMWh
			row.CostUSD += st.Transactions[j].PriceUSD
			j++
		}
		if i < len(st.HydrogenProductions) {
			row.HydrogenKg = st.HydrogenProductions[i].KgHydrogen
		}
		if i < len(st.TaxCredits) {
			row.Tier = st.TaxCredits[i].Tier
			row.CreditUSD = st.TaxCredits[i].TotalUSD
		}
		cum += row.CreditUSD
		row.CumCreditUSD = cum
		rows = append(rows, row)
	}
	return rows
}
