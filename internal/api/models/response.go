package models

import (
	"time"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/config"
	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/model"
	"tax-credit-model/internal/simulation"
)

// SimulationResponse represents the response from a simulation run
type SimulationResponse struct {
	Status string             `json:"status"`
	Result *simulation.Result `json:"result"`
	Stats  analysis.RunStats  `json:"stats"`
	Ledger []LedgerRow        `json:"ledger,omitempty"`
}

// LedgerRow represents one step in the simulation ledger
type LedgerRow struct {
	Index        int       `json:"index"`
	Timestamp    time.Time `json:"timestamp"`
	Plants       int       `json:"plants"`
	PurchasedMWh float64   `json:"purchased_mwh"`
	CostUSD      float64   `json:"cost_usd"`
	EmittedKg    float64   `json:"emitted_kg"`
	HydrogenKg   float64   `json:"hydrogen_kg"`
	Tier         string    `json:"tier"`
	CreditUSD    float64   `json:"credit_usd"`
	CumCreditUSD float64   `json:"cum_credit_usd"`
}

func NewLedger(rows []simulation.LedgerRow) []LedgerRow {
	out := make([]LedgerRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, LedgerRow{
			Index:        r.Index,
			Timestamp:    r.Timestamp,
			Plants:       r.Plants,
			PurchasedMWh: r.PurchasedMWh,
			CostUSD:      r.CostUSD,
			EmittedKg:    r.EmittedKg,
			HydrogenKg:   r.HydrogenKg,
			Tier:         string(r.Tier),
			CreditUSD:    r.CreditUSD,
			CumCreditUSD: r.CumCreditUSD,
		})
	}
	return out
}

type SimulationListResponse struct {
	Simulations []model.SimulationSummary `json:"simulations"`
}

// RankResponse represents the response from ranking simulation runs
type RankResponse struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked run
type Ranking struct {
	Rank int `json:"rank"`
	analysis.RunStats
}

type ElectrolyzerListResponse struct {
	Electrolyzers []model.Electrolyzer `json:"electrolyzers"`
}

// PresetListResponse lists preset files; Skipped maps unreadable files to their error
type PresetListResponse struct {
	Dir     string            `json:"dir"`
	Presets []config.Preset   `json:"presets"`
	Skipped map[string]string `json:"skipped,omitempty"`
}

type GenerationsResponse struct {
	Accepted int        `json:"accepted"`
	Grid     grid.Stats `json:"grid"`
}

type HealthResponse struct {
	Status  string     `json:"status"`
	Storage string     `json:"storage"`
	Grid    grid.Stats `json:"grid"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
