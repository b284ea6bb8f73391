package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tax-credit-model/internal/logging"
	"tax-credit-model/internal/model"

	"gotest.tools/v3/assert"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), logging.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": newTestSQLite(t),
	}
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		db := "taxcredit_test_" + time.Now().UTC().Format("20060102150405")
		s, err := NewMongoStore(context.Background(), uri, db, logging.Discard())
		if err != nil {
			t.Fatalf("NewMongoStore: %v", err)
		}
		t.Cleanup(func() {
			_ = s.client.Database(db).Drop(context.Background())
			s.Close()
		})
		out["mongo"] = s
	}
	return out
}

func sampleState(id string) model.SimulationState {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	gas := model.EnergySourcePortfolio{}.AddEnergy(model.SourceNaturalGas, 2)
	return model.SimulationState{
		ID:             id,
		ElectrolyzerID: "ely-1",
		Transactions: []model.EnergyTransaction{
			{SimulationID: id, ElectrolyzerID: "ely-1", PlantID: 7, Timestamp: ts, PriceUSD: 40, Portfolio: gas},
			{SimulationID: id, ElectrolyzerID: "ely-1", PlantID: 7, Timestamp: ts.Add(model.StepDuration), PriceUSD: 42, Portfolio: gas},
		},
		Emissions: []model.EmissionEvent{
			{Timestamp: ts, AmountEmittedKg: 403.92},
			{Timestamp: ts.Add(model.StepDuration), AmountEmittedKg: 403.92},
		},
		HydrogenProductions: []model.HydrogenProductionEvent{
			{Timestamp: ts, KgHydrogen: 40},
			{Timestamp: ts.Add(model.StepDuration), KgHydrogen: 40},
		},
		TaxCredits: []model.TaxCredit45V{
			{Tier: model.TierNone, TotalUSD: 0},
			{Tier: model.TierNone, TotalUSD: 0},
		},
		Summary: model.TaxCreditSummary{CreditHoursNone: 0.5},
	}
}

func TestSimulationRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleState("run-" + name)

			_, err := s.UpdateSimulationState(ctx, want)
			assert.NilError(t, err)

			got, err := s.GetSimulationState(ctx, want.ID)
			assert.NilError(t, err)
			assert.DeepEqual(t, *got, want)
		})
	}
}

func TestSimulationUpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first := sampleState("upsert")
			_, err := s.UpdateSimulationState(ctx, first)
			assert.NilError(t, err)

			second := first.Clone()
			second.ElectrolyzerID = "ely-2"
			second.Summary.CreditHoursFull = 1
			_, err = s.UpdateSimulationState(ctx, second)
			assert.NilError(t, err)

			got, err := s.GetSimulationState(ctx, "upsert")
			assert.NilError(t, err)
			assert.Equal(t, got.ElectrolyzerID, "ely-2")
			assert.Equal(t, got.Summary.CreditHoursFull, 1.0)

			list, err := s.ListSimulationStates(ctx)
			assert.NilError(t, err)
			assert.Equal(t, len(list), 1)
			assert.Equal(t, list[0].Steps, 2)
		})
	}
}

func TestSimulationCreateAndNotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetSimulationState(ctx, "missing")
			assert.Assert(t, errors.Is(err, model.ErrNotFound), "got %v", err)

			created, err := s.CreateSimulationState(ctx, model.SimulationState{ElectrolyzerID: "ely-1"})
			assert.NilError(t, err)
			assert.Assert(t, created.ID != "")

			_, err = s.CreateSimulationState(ctx, model.SimulationState{ID: created.ID})
			assert.Assert(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)

			_, err = s.UpdateSimulationState(ctx, model.SimulationState{})
			assert.Assert(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestElectrolyzerRegistry(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			e, err := s.CreateElectrolyzer(ctx, model.Electrolyzer{
				Name:       "PEM 10",
				CapacityMW: 10,
				Production: model.Production{Type: model.ProductionConstant, ConversionRate: 20},
			})
			assert.NilError(t, err)
			assert.Assert(t, e.ID != "")

			got, err := s.GetElectrolyzer(ctx, e.ID)
			assert.NilError(t, err)
			assert.DeepEqual(t, *got, *e)

			list, err := s.ListElectrolyzers(ctx)
			assert.NilError(t, err)
			assert.Equal(t, len(list), 1)

			_, err = s.GetElectrolyzer(ctx, "nope")
			assert.Assert(t, errors.Is(err, model.ErrNotFound))

			_, err = s.CreateElectrolyzer(ctx, model.Electrolyzer{Name: "broken"})
			assert.Assert(t, errors.Is(err, model.ErrInvalidArgument))
		})
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	st := sampleState("iso")
	_, err := s.UpdateSimulationState(ctx, st)
	assert.NilError(t, err)

	st.Emissions[0].AmountEmittedKg = -1

	got, err := s.GetSimulationState(ctx, "iso")
	assert.NilError(t, err)
	assert.Equal(t, got.Emissions[0].AmountEmittedKg, 403.92)
}
