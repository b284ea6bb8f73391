package simulation

import (
	"time"

	"tax-credit-model/internal/model"
)

// Emission factors in kg CO2 per MWh.
const (
	NaturalGasKgCO2PerMWh = 201.96
	CoalKgCO2PerMWh       = 353.88
	PetroleumKgCO2PerMWh  = 266.76
	BiomassKgCO2PerMWh    = 530.82
)

// CalculateEmission returns the CO2 emitted to generate p. Sources without a
// factor (nuclear, renewables, storage, unknown) contribute nothing.
func CalculateEmission(ts time.Time, p model.EnergySourcePortfolio) model.EmissionEvent {
	kg := p.NaturalGasMWh*NaturalGasKgCO2PerMWh +
		p.CoalMWh*CoalKgCO2PerMWh +
		p.PetroleumMWh*PetroleumKgCO2PerMWh +
		p.BiomassMWh*BiomassKgCO2PerMWh
	return model.EmissionEvent{Timestamp: ts, AmountEmittedKg: kg}
}
