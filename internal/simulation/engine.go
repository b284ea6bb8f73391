package simulation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/logging"
	"tax-credit-model/internal/metrics"
	"tax-credit-model/internal/model"
	"tax-credit-model/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Engine struct {
	store store.SimulationStore
	log   *logrus.Logger
}

type Option func(*Engine)

func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(s store.SimulationStore, opts ...Option) *Engine {
	e := &Engine{store: s, log: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate runs electrolyzer against grid over the quarter-hour aligned
// window and persists the run state under runID.
//
// All state stays local until the final upsert. The first error aborts the
// run and nothing is written. An empty runID gets a fresh id; an existing
// run is extended with the new steps.
func (e *Engine) Simulate(ctx context.Context, runID string, grid model.PowerGrid, electrolyzer *model.Electrolyzer, dtr model.DateTimeRange) (*Result, error) {
	started := time.Now()
	res, err := e.simulate(ctx, runID, grid, electrolyzer, dtr)
	metrics.SimulationDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.SimulationRuns.WithLabelValues(strings.ToLower(model.ErrorCode(err))).Inc()
		e.log.WithError(err).WithField("simulation_id", runID).Warn("simulation aborted")
		return nil, err
	}
	metrics.SimulationRuns.WithLabelValues("ok").Inc()
	return res, nil
}

func (e *Engine) simulate(ctx context.Context, runID string, grid model.PowerGrid, electrolyzer *model.Electrolyzer, dtr model.DateTimeRange) (*Result, error) {
	if electrolyzer == nil {
		return nil, fmt.Errorf("electrolyzer is nil: %w", model.ErrInvalidArgument)
	}
	if err := electrolyzer.Validate(); err != nil {
		return nil, fmt.Errorf("electrolyzer %q: %v: %w", electrolyzer.ID, err, model.ErrInvalidArgument)
	}
	r, err := model.ParseTimeRange(dtr)
	if err != nil {
		return nil, err
	}

	state, err := e.loadOrNew(ctx, runID)
	if err != nil {
		return nil, err
	}
	state.ElectrolyzerID = electrolyzer.ID

	log := e.log.WithFields(logrus.Fields{
		"simulation_id":   state.ID,
		"electrolyzer_id": electrolyzer.ID,
		"plants":          len(grid.PowerPlants),
		"steps":           r.Steps(),
	})
	log.Info("simulation started")

	steps := 0
	for current := r.Start; current.Before(r.End); current = current.Add(model.StepDuration) {
		if err := e.step(&state, grid, electrolyzer, current); err != nil {
			return nil, fmt.Errorf("step %s: %w", current.Format(time.RFC3339), err)
		}
		steps++
	}

	if _, err := e.store.UpdateSimulationState(ctx, state); err != nil {
		return nil, fmt.Errorf("persist simulation %q: %w", state.ID, err)
	}
	metrics.SimulationSteps.Add(float64(steps))
	log.WithField("summary", state.Summary).Info("simulation complete")

	return &Result{
		SimulationID: state.ID,
		Range:        r,
		Steps:        steps,
		Summary:      state.Summary,
		EnergyCosts:  analysis.EnergyCostSeries(state.Transactions),
		Emissions:    NewSeriesRef(state.ID, SeriesEmissions),
		Hydrogen:     NewSeriesRef(state.ID, SeriesHydrogen),
	}, nil
}

// loadOrNew returns the stored run, or a fresh unsaved one when none exists.
func (e *Engine) loadOrNew(ctx context.Context, runID string) (model.SimulationState, error) {
	if runID == "" {
		return model.SimulationState{ID: uuid.NewString()}, nil
	}
	existing, err := e.store.GetSimulationState(ctx, runID)
	if errors.Is(err, model.ErrNotFound) {
		return model.SimulationState{ID: runID}, nil
	}
	if err != nil {
		return model.SimulationState{}, fmt.Errorf("load simulation %q: %w", runID, err)
	}
	return existing.Clone(), nil
}

func (e *Engine) step(state *model.SimulationState, grid model.PowerGrid, electrolyzer *model.Electrolyzer, ts time.Time) error {
	txs := make([]model.EnergyTransaction, 0, len(grid.PowerPlants))
	var portfolio model.EnergySourcePortfolio
	for _, plant := range grid.PowerPlants {
		tx, err := Purchase(electrolyzer, plant, PurchaseVolumeMWh, ts)
		if err != nil {
			return err
		}
		tx.SimulationID = state.ID
		txs = append(txs, tx)
		portfolio = portfolio.Merge(tx.Portfolio)
	}

	emission := CalculateEmission(ts, portfolio)
	production, err := CalculateHydrogen(ts, portfolio, electrolyzer)
	if err != nil {
		return err
	}
	credit, err := Classify(emission, production)
	if err != nil {
		return err
	}
	summary, err := state.Summary.Add(credit.Tier, model.StepHours)
	if err != nil {
		return err
	}
	metrics.CreditSteps.WithLabelValues(string(credit.Tier)).Inc()

	state.Summary = summary
	state.Transactions = append(state.Transactions, txs...)
	state.Emissions = append(state.Emissions, emission)
	state.HydrogenProductions = append(state.HydrogenProductions, production)
	state.TaxCredits = append(state.TaxCredits, credit)
	return nil
}
