package main

import (
	"fmt"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/model"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().IntP("limit", "n", 0, "Show only the top N runs (0=all)")
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank stored simulation runs by total tax credit",
	RunE:  runRank,
}

func runRank(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListSimulationStates(ctx)
	if err != nil {
		return err
	}
	states := make([]*model.SimulationState, 0, len(runs))
	for _, r := range runs {
		st, err := s.GetSimulationState(ctx, r.ID)
		if err != nil {
			return err
		}
		states = append(states, st)
	}

	ranked := analysis.RankByCredit(states)
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s %-36s %-20s %-7s %-12s %-12s %-10s\n", "rank", "simulation", "electrolyzer", "steps", "credit$", "h2 kg", "mean int")
	for i, r := range ranked {
		fmt.Fprintf(out, "%-4d %-36s %-20s %-7d %-12.2f %-12.1f %-10.3f\n",
			i+1, r.SimulationID, r.ElectrolyzerID, r.Steps, r.TotalCreditUSD, r.TotalHydrogenKg, r.MeanIntensity)
	}
	return nil
}
