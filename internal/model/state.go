package model

import "time"

// EnergyTransaction is one purchase from one plant at one step.
type EnergyTransaction struct {
	SimulationID   string                `json:"simulation_id" bson:"simulation_id"`
	ElectrolyzerID string                `json:"electrolyzer_id" bson:"electrolyzer_id"`
	PlantID        int                   `json:"plant_id" bson:"plant_id"`
	Timestamp      time.Time             `json:"timestamp" bson:"timestamp"`
	PriceUSD       float64               `json:"price_usd" bson:"price_usd"`
	Portfolio      EnergySourcePortfolio `json:"portfolio" bson:"portfolio"`
}

type EmissionEvent struct {
	Timestamp       time.Time `json:"timestamp" bson:"timestamp"`
	AmountEmittedKg float64   `json:"amount_emitted_kg" bson:"amount_emitted_kg"`
}

type HydrogenProductionEvent struct {
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	KgHydrogen float64   `json:"kg_hydrogen" bson:"kg_hydrogen"`
}

// SimulationState is everything a run accumulates. The four lists are
// append-only and index-aligned per step for Emissions, HydrogenProductions
// and TaxCredits; Transactions holds one entry per plant per step.
type SimulationState struct {
	ID                  string                    `json:"id" bson:"_id"`
	ElectrolyzerID      string                    `json:"electrolyzer_id" bson:"electrolyzer_id"`
	Transactions        []EnergyTransaction       `json:"transactions" bson:"transactions"`
	Emissions           []EmissionEvent           `json:"emissions" bson:"emissions"`
	HydrogenProductions []HydrogenProductionEvent `json:"hydrogen_productions" bson:"hydrogen_productions"`
	TaxCredits          []TaxCredit45V            `json:"tax_credits" bson:"tax_credits"`
	Summary             TaxCreditSummary          `json:"tax_credit_summary" bson:"tax_credit_summary"`
}

// Clone returns a copy that shares no slices with s.
func (s SimulationState) Clone() SimulationState {
	out := s
	out.Transactions = cloneSlice(s.Transactions)
	out.Emissions = cloneSlice(s.Emissions)
	out.HydrogenProductions = cloneSlice(s.HydrogenProductions)
	out.TaxCredits = cloneSlice(s.TaxCredits)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// SimulationSummary is the list view of a stored run.
type SimulationSummary struct {
	ID             string           `json:"id"`
	ElectrolyzerID string           `json:"electrolyzer_id"`
	Steps          int              `json:"steps"`
	Summary        TaxCreditSummary `json:"tax_credit_summary"`
}

func (s SimulationState) ToSummary() SimulationSummary {
	return SimulationSummary{
		ID:             s.ID,
		ElectrolyzerID: s.ElectrolyzerID,
		Steps:          len(s.Emissions),
		Summary:        s.Summary,
	}
}
