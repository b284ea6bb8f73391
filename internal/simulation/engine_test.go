package simulation

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/model"
	"tax-credit-model/internal/store"

	"gotest.tools/v3/assert"
)

func gasGrid(start, end time.Time, plants ...int) model.PowerGrid {
	synth := make([]grid.SyntheticPlant, 0, len(plants))
	for _, id := range plants {
		synth = append(synth, grid.SyntheticPlant{PlantID: id, Portfolio: gasPortfolio(2), SalePriceUSDPerMWh: 25})
	}
	return model.PowerGrid{PowerPlants: model.GroupByPlant(grid.Synthesize(synth, start, end))}
}

func TestSimulateSingleStepAtEpoch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	engine := New(s)
	e := constantElectrolyzer(100, 20)

	res, err := engine.Simulate(ctx, "epoch-run", gasGrid(epoch, epoch.Add(time.Hour), 1), e, model.DateTimeRange{
		Start: "1970-01-01T00:00",
		End:   "1970-01-01T00:15",
	})
	assert.NilError(t, err)
	assert.Equal(t, res.Steps, 1)
	assert.Equal(t, res.SimulationID, "epoch-run")
	assert.Equal(t, res.Summary, model.TaxCreditSummary{CreditHoursNone: 0.25})
	assert.Equal(t, res.Emissions, SeriesRef{SimulationID: "epoch-run", Kind: SeriesEmissions, Path: "/api/v1/simulations/epoch-run/emissions"})
	assert.Equal(t, res.Hydrogen, SeriesRef{SimulationID: "epoch-run", Kind: SeriesHydrogen, Path: "/api/v1/simulations/epoch-run/hydrogen"})
	assert.Equal(t, len(res.EnergyCosts.DataPoints), 1)
	assert.Equal(t, res.EnergyCosts.DataPoints[0].Value, 50.0)

	st, err := s.GetSimulationState(ctx, "epoch-run")
	assert.NilError(t, err)
	assert.Equal(t, st.ElectrolyzerID, "ely")
	assert.Equal(t, len(st.Transactions), 1)
	assert.Equal(t, st.Transactions[0].SimulationID, "epoch-run")
	assert.Equal(t, st.Emissions[0].AmountEmittedKg, 403.92)
	assert.Equal(t, st.HydrogenProductions[0].KgHydrogen, 40.0)
	assert.Equal(t, st.TaxCredits[0], model.TaxCredit45V{Tier: model.TierNone, TotalUSD: 0})
	assert.Equal(t, st.Summary.CreditHoursNone, 0.25)
}

func TestSimulateMultiplePlants(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := constantElectrolyzer(3, 10)

	res, err := New(s).Simulate(ctx, "", gasGrid(epoch, epoch.Add(2*time.Hour), 1, 2, 3), e, model.DateTimeRange{
		Start: "1970-01-01T00:00",
		End:   "1970-01-01T01:00",
	})
	assert.NilError(t, err)
	assert.Assert(t, res.SimulationID != "")
	assert.Equal(t, res.Steps, 4)
	assert.Equal(t, res.Summary.CreditHoursNone, 1.0)

	// three plants × 2 MWh × $25, grouped per step
	assert.Equal(t, len(res.EnergyCosts.DataPoints), 4)
	for i, p := range res.EnergyCosts.DataPoints {
		assert.Equal(t, p.Value, 150.0)
		assert.Assert(t, p.Date.Equal(epoch.Add(time.Duration(i)*model.StepDuration)))
	}

	st, err := s.GetSimulationState(ctx, res.SimulationID)
	assert.NilError(t, err)
	assert.Equal(t, len(st.Transactions), 12)
	// 6 MWh bought but capacity caps consumption at 3 MWh
	assert.Equal(t, st.HydrogenProductions[0].KgHydrogen, 30.0)
	gasMWh := 6.0
	assert.Equal(t, st.Emissions[0].AmountEmittedKg, gasMWh*NaturalGasKgCO2PerMWh)
}

func TestSimulateReusesHourlyRecord(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	// one record per hour only
	pg := model.PowerGrid{PowerPlants: []model.PowerPlant{{
		PlantID: 1,
		Generations: []model.GenerationMetric{
			{PlantID: 1, TimeGenerated: epoch, SalePriceUSDPerMWh: 10, Portfolio: model.EnergySourcePortfolio{}.AddEnergy(model.SourceWind, 8)},
		},
	}}}

	res, err := New(s).Simulate(ctx, "hourly", pg, constantElectrolyzer(100, 20), model.DateTimeRange{
		Start: "1970-01-01T00:00",
		End:   "1970-01-01T01:00",
	})
	assert.NilError(t, err)
	assert.Equal(t, res.Steps, 4)
	assert.Equal(t, res.Summary.CreditHoursFull, 1.0)

	st, _ := s.GetSimulationState(ctx, "hourly")
	for _, c := range st.TaxCredits {
		assert.Equal(t, c.TotalUSD, 3.0*40)
	}
}

func TestSimulateSnapsRange(t *testing.T) {
	ctx := context.Background()
	res, err := New(store.NewMemoryStore()).Simulate(ctx, "snap", gasGrid(epoch, epoch.Add(time.Hour), 1), constantElectrolyzer(100, 20), model.DateTimeRange{
		Start: "1970-01-01T00:05",
		End:   "1970-01-01T00:31",
	})
	assert.NilError(t, err)
	assert.Assert(t, res.Range.Start.Equal(epoch.Add(15*time.Minute)))
	assert.Assert(t, res.Range.End.Equal(epoch.Add(45*time.Minute)))
	assert.Equal(t, res.Steps, 2)
}

func TestSimulateExtendsExistingRun(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	engine := New(s)
	pg := gasGrid(epoch, epoch.Add(time.Hour), 1)
	e := constantElectrolyzer(100, 20)

	_, err := engine.Simulate(ctx, "ext", pg, e, model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T00:30"})
	assert.NilError(t, err)
	res, err := engine.Simulate(ctx, "ext", pg, e, model.DateTimeRange{Start: "1970-01-01T00:30", End: "1970-01-01T01:00"})
	assert.NilError(t, err)

	assert.Equal(t, res.Summary.CreditHoursNone, 1.0)
	st, _ := s.GetSimulationState(ctx, "ext")
	assert.Equal(t, len(st.Emissions), 4)
	assert.Equal(t, len(res.EnergyCosts.DataPoints), 4)
}

func TestSimulateFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	e := constantElectrolyzer(100, 20)
	// data only for the first hour; the run asks for two
	pg := gasGrid(epoch, epoch.Add(time.Hour), 1)

	tests := []struct {
		name string
		run  func(*Engine) error
		want error
	}{
		{"missing generation", func(en *Engine) error {
			_, err := en.Simulate(ctx, "r", pg, e, model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T02:00"})
			return err
		}, model.ErrNotFound},
		{"bad range", func(en *Engine) error {
			_, err := en.Simulate(ctx, "r", pg, e, model.DateTimeRange{Start: "1970-01-01T01:00", End: "1970-01-01T00:00"})
			return err
		}, model.ErrInvalidArgument},
		{"malformed range", func(en *Engine) error {
			_, err := en.Simulate(ctx, "r", pg, e, model.DateTimeRange{Start: "01/01/1970", End: "1970-01-01T00:00"})
			return err
		}, model.ErrParse},
		{"variable production", func(en *Engine) error {
			v := constantElectrolyzer(100, 20)
			v.Production.Type = model.ProductionVariable
			_, err := en.Simulate(ctx, "r", pg, v, model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T00:15"})
			return err
		}, model.ErrUnimplemented},
		{"empty grid", func(en *Engine) error {
			_, err := en.Simulate(ctx, "r", model.PowerGrid{}, e, model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T00:15"})
			return err
		}, model.ErrInvalidArgument},
		{"zero conversion rate on empty window", func(en *Engine) error {
			_, err := en.Simulate(ctx, "r", pg, constantElectrolyzer(100, 0), model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T00:00"})
			return err
		}, model.ErrInvalidArgument},
		{"nil electrolyzer", func(en *Engine) error {
			_, err := en.Simulate(ctx, "r", pg, nil, model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T00:15"})
			return err
		}, model.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			err := tt.run(New(s))
			assert.Assert(t, errors.Is(err, tt.want), "got %v", err)

			_, err = s.GetSimulationState(ctx, "r")
			assert.Assert(t, errors.Is(err, model.ErrNotFound), "store was written: %v", err)
		})
	}
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) UpdateSimulationState(context.Context, model.SimulationState) (*model.SimulationState, error) {
	return nil, model.ErrPoisoned
}

func TestSimulatePropagatesStoreError(t *testing.T) {
	s := failingStore{store.NewMemoryStore()}
	_, err := New(s).Simulate(context.Background(), "r", gasGrid(epoch, epoch.Add(time.Hour), 1), constantElectrolyzer(100, 20),
		model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T00:15"})
	assert.Assert(t, errors.Is(err, model.ErrPoisoned))
}

func TestLedgerCSV(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	_, err := New(s).Simulate(ctx, "csv", gasGrid(epoch, epoch.Add(time.Hour), 1, 2), constantElectrolyzer(100, 20),
		model.DateTimeRange{Start: "1970-01-01T00:00", End: "1970-01-01T00:30"})
	assert.NilError(t, err)
	st, _ := s.GetSimulationState(ctx, "csv")

	ledger := BuildLedger(st)
	assert.Equal(t, len(ledger), 2)
	assert.Equal(t, ledger[1].Plants, 2)
	assert.Equal(t, ledger[1].PurchasedMWh, 4.0)
	assert.Equal(t, ledger[1].CostUSD, 100.0)
	assert.Equal(t, ledger[1].Tier, model.TierNone)

	var buf bytes.Buffer
	assert.NilError(t, EncodeLedgerCSV(&buf, ledger))
	records, err := csv.NewReader(&buf).ReadAll()
	assert.NilError(t, err)
	assert.Equal(t, len(records), 3)
	assert.Equal(t, records[0][0], "index")
	assert.DeepEqual(t, records[2], []string{
		"1", "1970-01-01T00:15:00Z", "2", "4.000000", "100.00", "807.840000", "80.000000", "none", "0.00", "0.00",
	})
}
