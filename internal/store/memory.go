package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tax-credit-model/internal/model"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process maps. Values are cloned on the
// way in and out so callers never share slices with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	simulations   map[string]model.SimulationState
	electrolyzers map[string]model.Electrolyzer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		simulations:   make(map[string]model.SimulationState),
		electrolyzers: make(map[string]model.Electrolyzer),
	}
}

func (s *MemoryStore) GetSimulationState(_ context.Context, id string) (*model.SimulationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.simulations[id]
	if !ok {
		return nil, fmt.Errorf("simulation %q: %w", id, model.ErrNotFound)
	}
	out := st.Clone()
	return &out, nil
}

func (s *MemoryStore) CreateSimulationState(_ context.Context, initial model.SimulationState) (*model.SimulationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if initial.ID == "" {
		initial.ID = uuid.NewString()
	}
	if _, exists := s.simulations[initial.ID]; exists {
		return nil, fmt.Errorf("simulation %q already exists: %w", initial.ID, model.ErrInvalidArgument)
	}
	s.simulations[initial.ID] = initial.Clone()
	out := initial.Clone()
	return &out, nil
}

func (s *MemoryStore) UpdateSimulationState(_ context.Context, state model.SimulationState) (*model.SimulationState, error) {
	if state.ID == "" {
		return nil, fmt.Errorf("update simulation without id: %w", model.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.simulations[state.ID] = state.Clone()
	out := state.Clone()
	return &out, nil
}

func (s *MemoryStore) ListSimulationStates(_ context.Context) ([]model.SimulationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SimulationSummary, 0, len(s.simulations))
	for _, st := range s.simulations {
		out = append(out, st.ToSummary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetElectrolyzer(_ context.Context, id string) (*model.Electrolyzer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.electrolyzers[id]
	if !ok {
		return nil, fmt.Errorf("electrolyzer %q: %w", id, model.ErrNotFound)
	}
	return &e, nil
}

func (s *MemoryStore) CreateElectrolyzer(_ context.Context, e model.Electrolyzer) (*model.Electrolyzer, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.electrolyzers[e.ID] = e
	return &e, nil
}

func (s *MemoryStore) ListElectrolyzers(_ context.Context) ([]model.Electrolyzer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Electrolyzer, 0, len(s.electrolyzers))
	for _, e := range s.electrolyzers {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
