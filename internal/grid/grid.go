// Package grid is the power grid collaborator: the read side hands the
// simulation engine a snapshot of every plant and its generation history, the
// write side ingests new generation records.
package grid

import (
	"context"
	"sort"
	"sync"

	"tax-credit-model/internal/model"
)

type Reader interface {
	GetPowerGrid(ctx context.Context) (model.PowerGrid, error)
}

type Writer interface {
	AddGenerations(ctx context.Context, generations []model.GenerationMetric) error
}

// SourceWriter replaces everything previously loaded from one named source,
// such as a generation file. An empty batch removes the source.
type SourceWriter interface {
	ReplaceSource(ctx context.Context, source string, generations []model.GenerationMetric) error
}

// Grid is the full collaborator served over the API.
type Grid interface {
	Reader
	Writer
	SourceWriter
	Stats() Stats
}

var _ Grid = (*MemoryGrid)(nil)

// MemoryGrid holds generations per plant id. Records added directly come
// first for each plant, followed by the records of each source in source
// name order.
type MemoryGrid struct {
	mu      sync.RWMutex
	plants  map[int][]model.GenerationMetric
	sources map[string]map[int][]model.GenerationMetric
}

func NewMemoryGrid() *MemoryGrid {
	return &MemoryGrid{
		plants:  make(map[int][]model.GenerationMetric),
		sources: make(map[string]map[int][]model.GenerationMetric),
	}
}

// GetPowerGrid returns a snapshot ordered by plant id. The slices are copies;
// later ingestion does not affect a running simulation.
func (g *MemoryGrid) GetPowerGrid(_ context.Context) (model.PowerGrid, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	merged := g.merged()
	ids := make([]int, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := model.PowerGrid{PowerPlants: make([]model.PowerPlant, 0, len(ids))}
	for _, id := range ids {
		out.PowerPlants = append(out.PowerPlants, model.PowerPlant{PlantID: id, Generations: merged[id]})
	}
	return out, nil
}

// AddGenerations appends records to their plants, creating plants as needed.
func (g *MemoryGrid) AddGenerations(_ context.Context, generations []model.GenerationMetric) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, plant := range model.GroupByPlant(generations) {
		g.plants[plant.PlantID] = append(g.plants[plant.PlantID], plant.Generations...)
	}
	return nil
}

// ReplaceSource drops the records previously loaded under source and stores
// generations in their place.
func (g *MemoryGrid) ReplaceSource(_ context.Context, source string, generations []model.GenerationMetric) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(generations) == 0 {
		delete(g.sources, source)
		return nil
	}
	byPlant := make(map[int][]model.GenerationMetric)
	for _, plant := range model.GroupByPlant(generations) {
		byPlant[plant.PlantID] = plant.Generations
	}
	g.sources[source] = byPlant
	return nil
}

// merged builds fresh per-plant slices. Callers hold the lock.
func (g *MemoryGrid) merged() map[int][]model.GenerationMetric {
	names := make([]string, 0, len(g.sources))
	for name := range g.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[int][]model.GenerationMetric, len(g.plants))
	for id, gens := range g.plants {
		out[id] = append([]model.GenerationMetric(nil), gens...)
	}
	for _, name := range names {
		for id, gens := range g.sources[name] {
			out[id] = append(out[id], gens...)
		}
	}
	return out
}

// Stats is a small summary of what the grid holds.
type Stats struct {
	Plants      int `json:"plants"`
	Generations int `json:"generations"`
}

func (g *MemoryGrid) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	plants := make(map[int]struct{}, len(g.plants))
	s := Stats{}
	for id, gens := range g.plants {
		plants[id] = struct{}{}
		s.Generations += len(gens)
	}
	for _, byPlant := range g.sources {
		for id, gens := range byPlant {
			plants[id] = struct{}{}
			s.Generations += len(gens)
		}
	}
	s.Plants = len(plants)
	return s
}
