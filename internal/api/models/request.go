package models

import (
	"tax-credit-model/internal/config"
	"tax-credit-model/internal/model"
)

// SimulationRequest represents the request body for running a simulation.
//
// The electrolyzer is resolved in order: ElectrolyzerID from the registry,
// then Preset from the preset directory, then the server default. Inline
// Electrolyzer fields override whichever base was found, or stand alone.
type SimulationRequest struct {
	SimulationID   string                     `json:"simulation_id,omitempty"`
	ElectrolyzerID string                     `json:"electrolyzer_id,omitempty"`
	Preset         string                     `json:"preset,omitempty"`
	Electrolyzer   *config.ElectrolyzerConfig `json:"electrolyzer,omitempty"`
	Start          string                     `json:"start,omitempty"` // YYYY-MM-DDTHH:MM, UTC
	End            string                     `json:"end,omitempty"`
	IncludeLedger  bool                       `json:"include_ledger,omitempty"`
}

// CreateElectrolyzerRequest registers an electrolyzer. An empty ID is assigned.
type CreateElectrolyzerRequest struct {
	Preset       string                    `json:"preset,omitempty"`
	Electrolyzer config.ElectrolyzerConfig `json:"electrolyzer"`
}

// AddGenerationsRequest carries generation records for the grid.
type AddGenerationsRequest struct {
	Generations []model.GenerationMetric `json:"generations" binding:"required"`
}
