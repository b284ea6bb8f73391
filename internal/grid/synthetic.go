package grid

import (
	"time"

	"tax-credit-model/internal/model"
)

// SyntheticPlant describes a plant that produces the same portfolio at a
// fixed price for every quarter hour of a window.
type SyntheticPlant struct {
	PlantID            int
	Portfolio          model.EnergySourcePortfolio
	SalePriceUSDPerMWh float64
}

// Synthesize emits one generation per plant per quarter hour in [start, end).
func Synthesize(plants []SyntheticPlant, start, end time.Time) []model.GenerationMetric {
	var out []model.GenerationMetric
	for ts := start; ts.Before(end); ts = ts.Add(model.StepDuration) {
		for _, p := range plants {
			out = append(out, model.GenerationMetric{
				PlantID:            p.PlantID,
				TimeGenerated:      ts,
				SalePriceUSDPerMWh: p.SalePriceUSDPerMWh,
				Portfolio:          p.Portfolio,
			})
		}
	}
	return out
}
