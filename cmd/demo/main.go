package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/logging"
	"tax-credit-model/internal/model"
	"tax-credit-model/internal/simulation"
	"tax-credit-model/internal/store"
)

// Demo:
// - Build a three-plant synthetic grid (gas, wind+solar, mixed)
// - Run a 100 MW electrolyzer over one day
// - Print the first steps, the tier histogram and optionally a ledger CSV
func main() {
	hours := flag.Int("hours", 24, "Hours to simulate")
	capacity := flag.Float64("capacity", 5, "Electrolyzer capacity, MW")
	rate := flag.Float64("rate", 20, "Conversion rate, kg H2 per MWh")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/ledger.csv)")
	verbose := flag.Bool("v", false, "Log engine events")
	flag.Parse()

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Duration(*hours) * time.Hour)

	plants := []grid.SyntheticPlant{
		{PlantID: 1, SalePriceUSDPerMWh: 42, Portfolio: model.NewPortfolio(map[model.EnergySource]float64{
			model.SourceNaturalGas: 8,
		})},
		{PlantID: 2, SalePriceUSDPerMWh: 18, Portfolio: model.NewPortfolio(map[model.EnergySource]float64{
			model.SourceWind:  6,
			model.SourceSolar: 2,
		})},
		{PlantID: 3, SalePriceUSDPerMWh: 30, Portfolio: model.NewPortfolio(map[model.EnergySource]float64{
			model.SourceNuclear:    5,
			model.SourceNaturalGas: 1,
			model.SourceHydropower: 2,
		})},
	}
	pg := model.PowerGrid{PowerPlants: model.GroupByPlant(grid.Synthesize(plants, start, end))}

	electrolyzer := &model.Electrolyzer{
		ID:         "demo",
		Name:       "Demo PEM",
		CapacityMW: *capacity,
		Production: model.Production{Type: model.ProductionConstant, ConversionRate: *rate},
	}
	if err := electrolyzer.Validate(); err != nil {
		panic(err)
	}

	log := logging.Discard()
	if *verbose {
		log = logging.New("debug", "text")
	}
	s := store.NewMemoryStore()
	engine := simulation.New(s, simulation.WithLogger(log))

	ctx := context.Background()
	res, err := engine.Simulate(ctx, "demo", pg, electrolyzer, model.DateTimeRange{
		Start: start.Format(model.DateTimeLayout),
		End:   end.Format(model.DateTimeLayout),
	})
	if err != nil {
		panic(err)
	}
	st, err := s.GetSimulationState(ctx, res.SimulationID)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Grid: %d plants, %d steps\n", len(pg.PowerPlants), res.Steps)
	fmt.Printf("Electrolyzer: %s %.1f MW @ %.1f kg/MWh\n\n", electrolyzer.Name, electrolyzer.CapacityMW, electrolyzer.Production.ConversionRate)

	ledger := simulation.BuildLedger(st)
	for i := 0; i < min(8, len(ledger)); i++ {
		r := ledger[i]
		fmt.Printf(
			"%s  mwh=%5.2f  cost=%7.2f  co2=%8.2f  h2=%7.2f  tier=%-5s  credit=%8.2f  cum=%9.2f\n",
			r.Timestamp.Format("2006-01-02 15:04"),
			r.PurchasedMWh,
			r.CostUSD,
			r.EmittedKg,
			r.HydrogenKg,
			string(r.Tier),
			r.CreditUSD,
			r.CumCreditUSD,
		)
	}

	hist := analysis.TierHistogram(res.Summary)
	fmt.Printf("\nHours by credit tier:\n")
	for i, key := range hist.Keys {
		fmt.Printf("  %-5s %6.2f\n", key, hist.Datasets[0].DataPoints[i])
	}

	if *outCSV != "" {
		if err := simulation.WriteLedgerCSV(*outCSV, ledger); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	stats := analysis.ComputeStats(st)
	fmt.Printf("\nDone. Hydrogen=%.1f kg  Credit=$%.2f  Mean intensity=%.3f kgCO2/kgH2\n",
		stats.TotalHydrogenKg, stats.TotalCreditUSD, stats.MeanIntensity)
}
