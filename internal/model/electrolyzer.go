package model

import "errors"

// ProductionType is the electrolyzer's hydrogen output model.
type ProductionType string

const (
	ProductionConstant ProductionType = "constant"
	ProductionVariable ProductionType = "variable"
)

// Production describes how electricity turns into hydrogen.
// ConversionRate is kg H2 per MWh consumed and only applies to constant production.
type Production struct {
	Type           ProductionType `json:"type" bson:"type" yaml:"type" toml:"type"`
	ConversionRate float64        `json:"conversion_rate" bson:"conversion_rate" yaml:"conversion_rate" toml:"conversion_rate"`
}

// Electrolyzer defines the plant that consumes purchased electricity.
// Units:
// - CapacityMW: MW, used directly as the per-step MWh cap
// - DegradationRate, ReplacementThreshold: fractions 0..1
// - Capex/Opex/ReplacementCost: USD
type Electrolyzer struct {
	ID         string     `json:"id" bson:"_id"`
	Name       string     `json:"name" bson:"name"`
	CapacityMW float64    `json:"capacity_mw" bson:"capacity_mw"`
	Production Production `json:"production" bson:"production"`

	ReplacementThreshold float64 `json:"replacement_threshold" bson:"replacement_threshold"`
	DegradationRate      float64 `json:"degradation_rate" bson:"degradation_rate"`
	CapexUSD             float64 `json:"capex_usd" bson:"capex_usd"`
	OpexUSD              float64 `json:"opex_usd" bson:"opex_usd"`
	ReplacementCostUSD   float64 `json:"replacement_cost_usd" bson:"replacement_cost_usd"`
}

func (e *Electrolyzer) Validate() error {
	if e.CapacityMW <= 0 {
		return errors.New("capacity_mw must be > 0")
	}
	switch e.Production.Type {
	case ProductionConstant:
		if e.Production.ConversionRate <= 0 {
			return errors.New("production.conversion_rate must be > 0")
		}
	case ProductionVariable:
	default:
		return errors.New("production.type must be constant or variable")
	}
	if e.DegradationRate < 0 || e.DegradationRate > 1 {
		return errors.New("degradation_rate must be in [0, 1]")
	}
	if e.ReplacementThreshold < 0 || e.ReplacementThreshold > 1 {
		return errors.New("replacement_threshold must be in [0, 1]")
	}
	if e.CapexUSD < 0 || e.OpexUSD < 0 || e.ReplacementCostUSD < 0 {
		return errors.New("costs must be >= 0")
	}
	return nil
}
