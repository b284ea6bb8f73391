package model

import (
	"sort"
	"time"
)

// GenerationMetric is one historical generation record for a plant.
type GenerationMetric struct {
	PlantID            int                   `json:"plant_id" bson:"plant_id"`
	TimeGenerated      time.Time             `json:"time_generated" bson:"time_generated"`
	SalePriceUSDPerMWh float64               `json:"sale_price_usd_per_mwh" bson:"sale_price_usd_per_mwh"`
	Portfolio          EnergySourcePortfolio `json:"portfolio" bson:"portfolio"`
}

type PowerPlant struct {
	PlantID     int                `json:"plant_id"`
	Generations []GenerationMetric `json:"generations"`
}

type PowerGrid struct {
	PowerPlants []PowerPlant `json:"power_plants"`
}

// GroupByPlant splits generations into plants, ordered by plant id.
// Records keep their input order within a plant.
func GroupByPlant(generations []GenerationMetric) []PowerPlant {
	byID := map[int][]GenerationMetric{}
	for _, g := range generations {
		byID[g.PlantID] = append(byID[g.PlantID], g)
	}
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]PowerPlant, 0, len(ids))
	for _, id := range ids {
		out = append(out, PowerPlant{PlantID: id, Generations: byID[id]})
	}
	return out
}
