package grid

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tax-credit-model/internal/model"

	"gotest.tools/v3/assert"
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func gas(mwh float64) model.EnergySourcePortfolio {
	return model.EnergySourcePortfolio{}.AddEnergy(model.SourceNaturalGas, mwh)
}

func TestMemoryGridGroupsByPlant(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGrid()

	err := g.AddGenerations(ctx, []model.GenerationMetric{
		{PlantID: 9, TimeGenerated: epoch, Portfolio: gas(1)},
		{PlantID: 2, TimeGenerated: epoch, Portfolio: gas(2)},
		{PlantID: 9, TimeGenerated: epoch.Add(time.Hour), Portfolio: gas(3)},
	})
	assert.NilError(t, err)
	assert.NilError(t, g.AddGenerations(ctx, []model.GenerationMetric{
		{PlantID: 2, TimeGenerated: epoch.Add(time.Hour), Portfolio: gas(4)},
	}))

	pg, err := g.GetPowerGrid(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(pg.PowerPlants), 2)
	assert.Equal(t, pg.PowerPlants[0].PlantID, 2)
	assert.Equal(t, len(pg.PowerPlants[0].Generations), 2)
	assert.Equal(t, pg.PowerPlants[0].Generations[1].Portfolio.TotalMWh, 4.0)
	assert.Equal(t, pg.PowerPlants[1].PlantID, 9)
	assert.Equal(t, g.Stats(), Stats{Plants: 2, Generations: 4})

	// snapshots are not affected by later writes
	pg.PowerPlants[0].Generations[0].SalePriceUSDPerMWh = 999
	again, _ := g.GetPowerGrid(ctx)
	assert.Equal(t, again.PowerPlants[0].Generations[0].SalePriceUSDPerMWh, 0.0)
}

func TestMemoryGridReplaceSource(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGrid()

	assert.NilError(t, g.AddGenerations(ctx, []model.GenerationMetric{
		{PlantID: 1, TimeGenerated: epoch, Portfolio: gas(1)},
	}))
	assert.NilError(t, g.ReplaceSource(ctx, "b.jsonl", []model.GenerationMetric{
		{PlantID: 1, TimeGenerated: epoch.Add(time.Hour), Portfolio: gas(3)},
	}))
	assert.NilError(t, g.ReplaceSource(ctx, "a.jsonl", []model.GenerationMetric{
		{PlantID: 1, TimeGenerated: epoch, Portfolio: gas(2)},
		{PlantID: 2, TimeGenerated: epoch, Portfolio: gas(2)},
	}))
	assert.Equal(t, g.Stats(), Stats{Plants: 2, Generations: 4})

	pg, err := g.GetPowerGrid(ctx)
	assert.NilError(t, err)
	totals := []float64{}
	for _, gen := range pg.PowerPlants[0].Generations {
		totals = append(totals, gen.Portfolio.TotalMWh)
	}
	// direct records first, then sources by name
	assert.DeepEqual(t, totals, []float64{1, 2, 3})

	// replacing a source swaps its records instead of adding to them
	for i := 0; i < 3; i++ {
		assert.NilError(t, g.ReplaceSource(ctx, "a.jsonl", []model.GenerationMetric{
			{PlantID: 2, TimeGenerated: epoch, Portfolio: gas(5)},
		}))
	}
	assert.Equal(t, g.Stats(), Stats{Plants: 2, Generations: 3})

	assert.NilError(t, g.ReplaceSource(ctx, "a.jsonl", nil))
	assert.NilError(t, g.ReplaceSource(ctx, "b.jsonl", nil))
	assert.Equal(t, g.Stats(), Stats{Plants: 1, Generations: 1})
}

func TestGenerationsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "plant"+GenerationFileExt)
	want := Synthesize([]SyntheticPlant{
		{PlantID: 1, Portfolio: gas(2), SalePriceUSDPerMWh: 20},
		{PlantID: 2, Portfolio: model.NewPortfolio(map[model.EnergySource]float64{model.SourceWind: 5, model.SourceCoal: 1}), SalePriceUSDPerMWh: 31.5},
	}, epoch, epoch.Add(time.Hour))
	assert.Equal(t, len(want), 8)

	assert.NilError(t, AppendGenerationsFile(path, want[:3]))
	assert.NilError(t, AppendGenerationsFile(path, want[3:]))

	got, err := LoadGenerationsFile(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, want)
}

func TestLoadGenerationsFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.jsonl")
	assert.NilError(t, os.WriteFile(bad, []byte("{\"plant_id\": 1, \"time_generated\": \"1970-01-01T00:00:00Z\"}\n\nnot json\n"), 0o644))
	_, err := LoadGenerationsFile(bad)
	assert.Assert(t, errors.Is(err, model.ErrParse), "got %v", err)
	assert.ErrorContains(t, err, "bad.jsonl:3")

	undated := filepath.Join(dir, "undated.jsonl")
	assert.NilError(t, os.WriteFile(undated, []byte("{\"plant_id\": 1}\n"), 0o644))
	_, err = LoadGenerationsFile(undated)
	assert.Assert(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)

	inconsistent := filepath.Join(dir, "inconsistent.jsonl")
	assert.NilError(t, os.WriteFile(inconsistent, []byte(`{"plant_id": 1, "time_generated": "1970-01-01T00:00:00Z", "portfolio": {"total_mwh": 10, "natural_gas_mwh": 10, "wind_mwh": 40}}`+"\n"), 0o644))
	_, err = LoadGenerationsFile(inconsistent)
	assert.Assert(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)
	assert.ErrorContains(t, err, "inconsistent.jsonl:1")

	negative := filepath.Join(dir, "negative.jsonl")
	assert.NilError(t, os.WriteFile(negative, []byte(`{"plant_id": 1, "time_generated": "1970-01-01T00:00:00Z", "portfolio": {"total_mwh": 1, "coal_mwh": 2, "solar_mwh": -1}}`+"\n"), 0o644))
	_, err = LoadGenerationsFile(negative)
	assert.Assert(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)

	_, err = LoadGenerationsFile(filepath.Join(dir, "missing.jsonl"))
	assert.Assert(t, errors.Is(err, os.ErrNotExist))
}
