package main

import (
	"fmt"
	"strconv"
	"time"

	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/model"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("out", "o", "", "Output .jsonl file (required)")
	generateCmd.Flags().Int("plant", 1, "Plant id")
	generateCmd.Flags().String("start", "2023-01-01T00:00", "First record, YYYY-MM-DDTHH:MM UTC")
	generateCmd.Flags().String("end", "2023-01-02T00:00", "End of records (exclusive)")
	generateCmd.Flags().Float64("price", 30, "Sale price, USD/MWh")
	generateCmd.Flags().StringToString("mix", map[string]string{"Gas": "6", "Wind": "2"}, "Portfolio per record, label=MWh")
	_ = generateCmd.MarkFlagRequired("out")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic generation file with a fixed portfolio every quarter hour",
	Example: `  cli generate --out data/generations/plant1.jsonl --plant 1 --mix Gas=4,Solar=4 --price 28`,
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	out, _ := cmd.Flags().GetString("out")
	plant, _ := cmd.Flags().GetInt("plant")
	price, _ := cmd.Flags().GetFloat64("price")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	mix, _ := cmd.Flags().GetStringToString("mix")

	r, err := model.ParseTimeRange(model.DateTimeRange{Start: start, End: end})
	if err != nil {
		return err
	}
	amounts := make(map[model.EnergySource]float64, len(mix))
	for label, raw := range mix {
		src, err := model.ParseEnergySource(label)
		if err != nil {
			return err
		}
		mwh, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("mix %s=%q: %w", label, raw, err)
		}
		amounts[src] += mwh
	}

	gens := grid.Synthesize([]grid.SyntheticPlant{{
		PlantID:            plant,
		Portfolio:          model.NewPortfolio(amounts),
		SalePriceUSDPerMWh: price,
	}}, r.Start, r.End)
	if err := grid.AppendGenerationsFile(out, gens); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records for plant %d (%s) to %s\n",
		len(gens), plant, r.End.Sub(r.Start).Round(time.Minute), out)
	return nil
}
