package analysis

import (
	"testing"
	"time"

	"tax-credit-model/internal/model"

	"gotest.tools/v3/assert"
)

var t0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func at(step int) time.Time { return t0.Add(time.Duration(step) * model.StepDuration) }

func TestEnergyCostSeries(t *testing.T) {
	txs := []model.EnergyTransaction{
		{PlantID: 1, Timestamp: at(1), PriceUSD: 10.1},
		{PlantID: 2, Timestamp: at(0), PriceUSD: 5},
		{PlantID: 2, Timestamp: at(1), PriceUSD: 0.2},
		{PlantID: 1, Timestamp: at(0), PriceUSD: 7.5},
		{PlantID: 3, Timestamp: at(2), PriceUSD: 1},
	}

	s := EnergyCostSeries(txs)
	assert.Equal(t, len(s.DataPoints), 3)
	assert.Assert(t, s.DataPoints[0].Date.Equal(at(0)))
	assert.Equal(t, s.DataPoints[0].Value, 12.5)
	assert.Assert(t, s.DataPoints[1].Date.Equal(at(1)))
	assert.Equal(t, s.DataPoints[1].Value, 10.3)
	assert.Equal(t, s.DataPoints[2].Value, 1.0)

	assert.Equal(t, len(EnergyCostSeries(nil).DataPoints), 0)
}

func sampleRun(id string, perStep [][2]float64) *model.SimulationState {
	st := &model.SimulationState{ID: id}
	for i, v := range perStep {
		emitted, produced := v[0], v[1]
		tier := model.TierNone
		switch r := emitted / produced; {
		case r < 0.45:
			tier = model.TierMax
		case r < 1.5:
			tier = model.Tier1
		}
		st.Emissions = append(st.Emissions, model.EmissionEvent{Timestamp: at(i), AmountEmittedKg: emitted})
		st.HydrogenProductions = append(st.HydrogenProductions, model.HydrogenProductionEvent{Timestamp: at(i), KgHydrogen: produced})
		st.TaxCredits = append(st.TaxCredits, model.TaxCredit45V{Tier: tier, TotalUSD: tier.Value() * produced})
		st.Transactions = append(st.Transactions, model.EnergyTransaction{Timestamp: at(i), PriceUSD: 20})
		st.Summary, _ = st.Summary.Add(tier, model.StepHours)
	}
	return st
}

func TestEmissionSeriesColorsByTier(t *testing.T) {
	st := sampleRun("r", [][2]float64{{0, 40}, {403.92, 40}, {20, 40}})
	s := EmissionSeries(st)

	got := []string{}
	for _, p := range s.DataPoints {
		got = append(got, p.Color)
	}
	assert.DeepEqual(t, got, []string{"green", "red", "#7fff00"})
	assert.Equal(t, s.DataPoints[1].Value, 403.92)

	h := HydrogenSeries(st)
	assert.Equal(t, len(h.DataPoints), 3)
	assert.Equal(t, h.DataPoints[2].Value, 40.0)
}

func TestTierHistogram(t *testing.T) {
	h := TierHistogram(model.TaxCreditSummary{
		CreditHoursFull: 1,
		CreditHours33:   0.75,
		CreditHours25:   0.5,
		CreditHours20:   0.25,
		CreditHoursNone: 2,
	})
	assert.DeepEqual(t, h.Keys, []string{"0%", "20%", "25%", "33%", "100%"})
	assert.Equal(t, len(h.Datasets), 1)
	assert.DeepEqual(t, h.Datasets[0].DataPoints, []float64{2, 0.25, 0.5, 0.75, 1})
}

func TestComputeStats(t *testing.T) {
	st := sampleRun("r", [][2]float64{{0, 40}, {40, 40}, {80, 40}})
	s := ComputeStats(st)

	assert.Equal(t, s.Steps, 3)
	assert.Equal(t, s.TotalEmittedKg, 120.0)
	assert.Equal(t, s.TotalHydrogenKg, 120.0)
	assert.Equal(t, s.TotalCostUSD, 60.0)
	assert.Equal(t, s.MinIntensity, 0.0)
	assert.Equal(t, s.MaxIntensity, 2.0)
	assert.Equal(t, s.MeanIntensity, 1.0)
	assert.Equal(t, s.P05Intensity, 0.1)
	assert.Equal(t, s.P95Intensity, 1.9)

	empty := ComputeStats(&model.SimulationState{ID: "empty"})
	assert.Equal(t, empty.Steps, 0)
	assert.Equal(t, empty.MaxIntensity, 0.0)
}

func TestRankByCredit(t *testing.T) {
	clean := sampleRun("clean", [][2]float64{{0, 40}, {0, 40}})
	dirty := sampleRun("dirty", [][2]float64{{403.92, 40}, {403.92, 40}})
	mixed := sampleRun("mixed", [][2]float64{{0, 40}, {403.92, 40}})

	ranked := RankByCredit([]*model.SimulationState{dirty, mixed, clean})
	ids := []string{}
	for _, r := range ranked {
		ids = append(ids, r.SimulationID)
	}
	assert.DeepEqual(t, ids, []string{"clean", "mixed", "dirty"})
	assert.Equal(t, ranked[0].TotalCreditUSD, 240.0)
}
