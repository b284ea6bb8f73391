package analysis

import (
	"sort"

	"tax-credit-model/internal/model"
)

// RankByCredit computes stats per run and sorts descending by total credit.
// Ties keep the lower intensity first, then the id.
func RankByCredit(states []*model.SimulationState) []RunStats {
	out := make([]RunStats, 0, len(states))
	for _, st := range states {
		out = append(out, ComputeStats(st))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalCreditUSD != out[j].TotalCreditUSD {
			return out[i].TotalCreditUSD > out[j].TotalCreditUSD
		}
		if out[i].MeanIntensity != out[j].MeanIntensity {
			return out[i].MeanIntensity < out[j].MeanIntensity
		}
		return out[i].SimulationID < out[j].SimulationID
	})
	return out
}
