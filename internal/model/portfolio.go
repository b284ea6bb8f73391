package model

import (
	"fmt"
	"math"
	"strings"
)

// EnergySource identifies a generation technology.
// Keep these values stable; they are persisted and used in CSV output.
type EnergySource string

const (
	SourceCoal                 EnergySource = "coal"
	SourceNaturalGas           EnergySource = "natural_gas"
	SourcePetroleum            EnergySource = "petroleum"
	SourceNuclear              EnergySource = "nuclear"
	SourceSolar                EnergySource = "solar"
	SourceGeothermal           EnergySource = "geothermal"
	SourceWind                 EnergySource = "wind"
	SourceBiomass              EnergySource = "biomass"
	SourceHydropower           EnergySource = "hydropower"
	SourceWholesaleStorageLoad EnergySource = "wholesale_storage_load"
	SourceUnknown              EnergySource = "unknown"
)

// AllSources lists every source in portfolio field order.
var AllSources = []EnergySource{
	SourceCoal,
	SourceNaturalGas,
	SourcePetroleum,
	SourceNuclear,
	SourceSolar,
	SourceGeothermal,
	SourceWind,
	SourceBiomass,
	SourceHydropower,
	SourceWholesaleStorageLoad,
	SourceUnknown,
}

// ParseEnergySource accepts both the canonical names above and the fuel
// labels used in grid operator fuel-mix reports (e.g. "Gas-CC", "WSL").
func ParseEnergySource(label string) (EnergySource, error) {
	s := strings.TrimSpace(label)
	switch s {
	case "Coal":
		return SourceCoal, nil
	case "Gas", "Gas-CC":
		return SourceNaturalGas, nil
	case "Biomass":
		return SourceBiomass, nil
	case "Hydro":
		return SourceHydropower, nil
	case "Nuclear":
		return SourceNuclear, nil
	case "Solar":
		return SourceSolar, nil
	case "Wind":
		return SourceWind, nil
	case "WSL":
		return SourceWholesaleStorageLoad, nil
	case "Other":
		return SourceUnknown, nil
	}
	for _, src := range AllSources {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("energy source %q: %w", label, ErrParse)
}

// EnergySourcePortfolio is an electricity volume broken down by source.
// Units: MWh.
//
// TotalMWh always equals the sum of the source buckets. Portfolios are values:
// AddEnergy, Merge and ScaleToAmount return a new portfolio and never mutate
// the receiver, so the invariant only has to hold for those three.
type EnergySourcePortfolio struct {
	TotalMWh                float64 `json:"total_mwh" bson:"total_mwh"`
	CoalMWh                 float64 `json:"coal_mwh" bson:"coal_mwh"`
	NaturalGasMWh           float64 `json:"natural_gas_mwh" bson:"natural_gas_mwh"`
	PetroleumMWh            float64 `json:"petroleum_mwh" bson:"petroleum_mwh"`
	NuclearMWh              float64 `json:"nuclear_mwh" bson:"nuclear_mwh"`
	SolarMWh                float64 `json:"solar_mwh" bson:"solar_mwh"`
	GeothermalMWh           float64 `json:"geothermal_mwh" bson:"geothermal_mwh"`
	WindMWh                 float64 `json:"wind_mwh" bson:"wind_mwh"`
	BiomassMWh              float64 `json:"biomass_mwh" bson:"biomass_mwh"`
	HydropowerMWh           float64 `json:"hydropower_mwh" bson:"hydropower_mwh"`
	WholesaleStorageLoadMWh float64 `json:"wholesale_storage_load_mwh" bson:"wholesale_storage_load_mwh"`
	UnknownMWh              float64 `json:"unknown_mwh" bson:"unknown_mwh"`
}

// NewPortfolio builds a portfolio from per-source volumes.
func NewPortfolio(volumes map[EnergySource]float64) EnergySourcePortfolio {
	var p EnergySourcePortfolio
	for _, src := range AllSources {
		if v, ok := volumes[src]; ok {
			p = p.AddEnergy(src, v)
		}
	}
	return p
}

// AddEnergy returns a copy of p with amountMWh added to source and to the total.
func (p EnergySourcePortfolio) AddEnergy(source EnergySource, amountMWh float64) EnergySourcePortfolio {
	out := p
	if bucket := out.bucket(source); bucket != nil {
		*bucket += amountMWh
	} else {
		out.UnknownMWh += amountMWh
	}
	out.TotalMWh += amountMWh
	return out
}

// Merge sums two portfolios bucket by bucket.
// The zero portfolio is the identity.
func (p EnergySourcePortfolio) Merge(other EnergySourcePortfolio) EnergySourcePortfolio {
	out := p
	out.TotalMWh += other.TotalMWh
	for _, src := range AllSources {
		*out.bucket(src) += other.Get(src)
	}
	return out
}

// ScaleToAmount scales every bucket so that the total becomes exactly amountMWh.
func (p EnergySourcePortfolio) ScaleToAmount(amountMWh float64) (EnergySourcePortfolio, error) {
	if p.TotalMWh <= 0 {
		return EnergySourcePortfolio{}, fmt.Errorf("scale portfolio with total %.6f MWh: %w", p.TotalMWh, ErrInvalidArgument)
	}
	if amountMWh < 0 || amountMWh > p.TotalMWh {
		return EnergySourcePortfolio{}, fmt.Errorf("scale portfolio to %.6f MWh, available %.6f MWh: %w", amountMWh, p.TotalMWh, ErrInvalidArgument)
	}

	ratio := amountMWh / p.TotalMWh
	out := p
	for _, src := range AllSources {
		*out.bucket(src) *= ratio
	}
	out.TotalMWh = amountMWh
	return out, nil
}

// portfolioTolerance bounds the drift allowed between the total and the sum
// of the buckets, relative to the larger of the two (and at least 1 MWh).
const portfolioTolerance = 1e-6

// Validate checks a portfolio that did not come out of the algebra above,
// such as a decoded generation record: every bucket and the total must be
// non-negative and the total must equal the bucket sum.
func (p EnergySourcePortfolio) Validate() error {
	if p.TotalMWh < 0 {
		return fmt.Errorf("total_mwh must be >= 0, got %g: %w", p.TotalMWh, ErrInvalidArgument)
	}
	sum := 0.0
	for _, src := range AllSources {
		v := p.Get(src)
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s_mwh must be >= 0, got %g: %w", src, v, ErrInvalidArgument)
		}
		sum += v
	}
	scale := math.Max(1, math.Max(sum, p.TotalMWh))
	if math.IsNaN(p.TotalMWh) || math.Abs(sum-p.TotalMWh) > portfolioTolerance*scale {
		return fmt.Errorf("total_mwh %g does not match the bucket sum %g: %w", p.TotalMWh, sum, ErrInvalidArgument)
	}
	return nil
}

// Get returns the volume for one source.
func (p EnergySourcePortfolio) Get(source EnergySource) float64 {
	if b := p.bucket(source); b != nil {
		return *b
	}
	return 0
}

// bucket returns a pointer to the field for source. It is only ever called on
// local copies inside the algebra above.
func (p *EnergySourcePortfolio) bucket(source EnergySource) *float64 {
	switch source {
	case SourceCoal:
		return &p.CoalMWh
	case SourceNaturalGas:
		return &p.NaturalGasMWh
	case SourcePetroleum:
		return &p.PetroleumMWh
	case SourceNuclear:
		return &p.NuclearMWh
	case SourceSolar:
		return &p.SolarMWh
	case SourceGeothermal:
		return &p.GeothermalMWh
	case SourceWind:
		return &p.WindMWh
	case SourceBiomass:
		return &p.BiomassMWh
	case SourceHydropower:
		return &p.HydropowerMWh
	case SourceWholesaleStorageLoad:
		return &p.WholesaleStorageLoadMWh
	case SourceUnknown:
		return &p.UnknownMWh
	default:
		return nil
	}
}
