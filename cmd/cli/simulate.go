package main

import (
	"fmt"
	"os"
	"path/filepath"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/config"
	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/ingest"
	"tax-credit-model/internal/model"
	"tax-credit-model/internal/simulation"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringP("data", "d", "", "Generation file (.jsonl) or directory of them (default: grid.data_dir)")
	simulateCmd.Flags().StringP("electrolyzer", "e", "", "Electrolyzer preset file (.yaml or .toml)")
	simulateCmd.Flags().StringP("preset", "p", "", "Electrolyzer preset id from electrolyzer_dir")
	simulateCmd.Flags().String("id", "", "Simulation id; an existing run is extended")
	simulateCmd.Flags().String("start", "", "Start, YYYY-MM-DDTHH:MM UTC (default: simulation.start)")
	simulateCmd.Flags().String("end", "", "End, YYYY-MM-DDTHH:MM UTC (default: simulation.end)")
	simulateCmd.Flags().StringP("out", "o", "", "Optional ledger CSV path")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulation and print its tax credit summary",
	Example: `  cli simulate --data data/generations --electrolyzer examples/electrolyzers/pem_100mw.yaml \
      --start 2023-01-01T00:00 --end 2023-01-08T00:00 --out results/ledger.csv`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	electrolyzer, err := electrolyzerFromFlags(cmd, e.cfg)
	if err != nil {
		return err
	}

	dataPath, _ := cmd.Flags().GetString("data")
	if dataPath == "" {
		dataPath = e.cfg.Grid.DataDir
	}
	g, err := loadGrid(cmd, dataPath, e)
	if err != nil {
		return err
	}
	pg, err := g.GetPowerGrid(ctx)
	if err != nil {
		return err
	}

	dtr := e.cfg.Simulation.Range()
	if v, _ := cmd.Flags().GetString("start"); v != "" {
		dtr.Start = v
	}
	if v, _ := cmd.Flags().GetString("end"); v != "" {
		dtr.End = v
	}

	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, _ := cmd.Flags().GetString("id")
	engine := simulation.New(s, simulation.WithLogger(e.log))
	res, err := engine.Simulate(ctx, id, pg, electrolyzer, dtr)
	if err != nil {
		return err
	}
	st, err := s.GetSimulationState(ctx, res.SimulationID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := analysis.ComputeStats(st)
	fmt.Fprintf(out, "Simulation %s  electrolyzer=%s  plants=%d\n", res.SimulationID, electrolyzer.Name, len(pg.PowerPlants))
	fmt.Fprintf(out, "Window %s .. %s  steps=%d\n",
		res.Range.Start.Format(model.DateTimeLayout), res.Range.End.Format(model.DateTimeLayout), res.Steps)
	fmt.Fprintf(out, "Hydrogen=%.1f kg  Emitted=%.1f kg CO2  Cost=$%.2f  Credit=$%.2f\n",
		stats.TotalHydrogenKg, stats.TotalEmittedKg, stats.TotalCostUSD, stats.TotalCreditUSD)
	fmt.Fprintf(out, "Intensity kgCO2/kgH2: mean=%.3f p05=%.3f p95=%.3f\n", stats.MeanIntensity, stats.P05Intensity, stats.P95Intensity)
	printHistogram(cmd, analysis.TierHistogram(res.Summary))

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		ledger := simulation.BuildLedger(st)
		if err := simulation.WriteLedgerCSV(outPath, ledger); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d rows to %s\n", len(ledger), outPath)
	}
	return nil
}

func electrolyzerFromFlags(cmd *cobra.Command, cfg *config.Config) (*model.Electrolyzer, error) {
	file, _ := cmd.Flags().GetString("electrolyzer")
	preset, _ := cmd.Flags().GetString("preset")

	var ec config.ElectrolyzerConfig
	switch {
	case file != "":
		loaded, err := config.LoadElectrolyzerFile(file)
		if err != nil {
			return nil, err
		}
		if loaded.ID == "" {
			base := filepath.Base(file)
			loaded.ID = base[:len(base)-len(filepath.Ext(base))]
		}
		ec = loaded
	case preset != "":
		p, err := config.FindPreset(cfg.ElectrolyzerDir, preset)
		if err != nil {
			return nil, err
		}
		ec = config.FromModel(p.Electrolyzer)
	case !cfg.Electrolyzer.IsZero():
		ec = cfg.Electrolyzer
	default:
		return nil, fmt.Errorf("--electrolyzer or --preset is required (or set electrolyzer in the config)")
	}

	e := ec.ToModel()
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("electrolyzer invalid: %w", err)
	}
	return &e, nil
}

// loadGrid reads a single generation file or every generation file in a directory.
func loadGrid(cmd *cobra.Command, path string, e *env) (*grid.MemoryGrid, error) {
	g := grid.NewMemoryGrid()
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		gens, err := grid.LoadGenerationsFile(path)
		if err != nil {
			return nil, err
		}
		return g, g.AddGenerations(cmd.Context(), gens)
	}

	rep, err := ingest.NewJob(path, g, e.log).RunOnce(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(rep.Failed) > 0 {
		for name, msg := range rep.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", name, msg)
		}
	}
	return g, nil
}

func printHistogram(cmd *cobra.Command, h analysis.Histogram) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-6s %10s\n", "credit", "hours")
	for i, key := range h.Keys {
		fmt.Fprintf(out, "%-6s %10.2f\n", key, h.Datasets[0].DataPoints[i])
	}
}
