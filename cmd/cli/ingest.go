package main

import (
	"fmt"
	"sort"

	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/ingest"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringP("data", "d", "", "Generation directory (default: grid.data_dir)")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Scan a generation directory once and report what the server would load",
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("data")
	if dir == "" {
		dir = e.cfg.Grid.DataDir
	}

	g := grid.NewMemoryGrid()
	rep, err := ingest.NewJob(dir, g, e.log).RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := g.Stats()
	fmt.Fprintf(out, "%s: %d files, %d plants, %d generations\n", dir, len(rep.Files), stats.Plants, stats.Generations)
	failed := make([]string, 0, len(rep.Failed))
	for name := range rep.Failed {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		fmt.Fprintf(out, "  FAILED %s: %s\n", name, rep.Failed[name])
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d generation files failed", len(failed))
	}
	return nil
}
