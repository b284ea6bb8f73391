package simulation

import (
	"fmt"
	"math"
	"time"

	"tax-credit-model/internal/model"
)

// CalculateHydrogen returns the hydrogen made from p in one step.
// CapacityMW caps the consumable volume directly (MW read as MWh per step).
func CalculateHydrogen(ts time.Time, p model.EnergySourcePortfolio, e *model.Electrolyzer) (model.HydrogenProductionEvent, error) {
	if e.Production.Type != model.ProductionConstant {
		return model.HydrogenProductionEvent{}, fmt.Errorf("production type %q: %w", e.Production.Type, model.ErrUnimplemented)
	}
	consumed := math.Min(p.TotalMWh, e.CapacityMW)
	return model.HydrogenProductionEvent{
		Timestamp:  ts,
		KgHydrogen: consumed * e.Production.ConversionRate,
	}, nil
}
