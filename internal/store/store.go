// Package store holds the persistence collaborators used by the simulation
// engine and the API: simulation run state and the electrolyzer registry.
//
// Every implementation serializes mutation per id, so concurrent runs on
// distinct ids never interfere and two writers on the same id resolve as
// last-write-wins.
package store

import (
	"context"

	"tax-credit-model/internal/model"
)

// SimulationStore persists run state by id.
type SimulationStore interface {
	// GetSimulationState returns model.ErrNotFound for unknown ids.
	GetSimulationState(ctx context.Context, id string) (*model.SimulationState, error)
	// CreateSimulationState stores initial and assigns an id when it has none.
	CreateSimulationState(ctx context.Context, initial model.SimulationState) (*model.SimulationState, error)
	// UpdateSimulationState upserts by id.
	UpdateSimulationState(ctx context.Context, state model.SimulationState) (*model.SimulationState, error)
	ListSimulationStates(ctx context.Context) ([]model.SimulationSummary, error)
}

// ElectrolyzerStore is the electrolyzer registry.
type ElectrolyzerStore interface {
	GetElectrolyzer(ctx context.Context, id string) (*model.Electrolyzer, error)
	CreateElectrolyzer(ctx context.Context, e model.Electrolyzer) (*model.Electrolyzer, error)
	ListElectrolyzers(ctx context.Context) ([]model.Electrolyzer, error)
}

// Store bundles both collaborators behind one backend.
type Store interface {
	SimulationStore
	ElectrolyzerStore
	Close() error
}
