package simulation

import (
	"fmt"
	"time"

	"tax-credit-model/internal/model"
)

// PurchaseVolumeMWh is the electricity bought from each plant at every step.
// It is a fixed policy, not a tunable.
const PurchaseVolumeMWh = 2.0

// Purchase buys desiredMWh from plant at ts.
//
// Matching is hour-granular: the first generation in the same calendar hour as
// ts is used, so all four steps of an hour resolve to the same record.
func Purchase(electrolyzer *model.Electrolyzer, plant model.PowerPlant, desiredMWh float64, ts time.Time) (model.EnergyTransaction, error) {
	for _, g := range plant.Generations {
		if !model.SameHour(g.TimeGenerated, ts) {
			continue
		}
		portfolio, err := g.Portfolio.ScaleToAmount(desiredMWh)
		if err != nil {
			return model.EnergyTransaction{}, fmt.Errorf("plant %d at %s: %w", plant.PlantID, ts.Format(time.RFC3339), err)
		}
		return model.EnergyTransaction{
			ElectrolyzerID: electrolyzer.ID,
			PlantID:        plant.PlantID,
			Timestamp:      ts,
			PriceUSD:       g.SalePriceUSDPerMWh * desiredMWh,
			Portfolio:      portfolio,
		}, nil
	}
	return model.EnergyTransaction{}, fmt.Errorf("no generation for plant %d at %s: %w", plant.PlantID, ts.Format(time.RFC3339), model.ErrNotFound)
}
