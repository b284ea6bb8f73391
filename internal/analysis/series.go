package analysis

import (
	"sort"
	"time"

	"tax-credit-model/internal/model"

	"github.com/shopspring/decimal"
)

const seriesColor = "blue"

// DataPoint is one plotted value. Color lets a chart highlight single points.
type DataPoint struct {
	Date  time.Time `json:"date"`
	Color string    `json:"color"`
	Value float64   `json:"value"`
}

type TimeSeries struct {
	Label      string      `json:"label"`
	Color      string      `json:"color"`
	DataPoints []DataPoint `json:"data_points"`
}

// EnergyCostSeries sums transaction prices per timestamp, ascending by time.
// Prices are summed as decimals so a step's cost does not depend on the
// order plants were visited in.
func EnergyCostSeries(txs []model.EnergyTransaction) TimeSeries {
	sums := map[int64]decimal.Decimal{}
	dates := map[int64]time.Time{}
	for _, tx := range txs {
		k := tx.Timestamp.UnixNano()
		sums[k] = sums[k].Add(decimal.NewFromFloat(tx.PriceUSD))
		dates[k] = tx.Timestamp
	}

	keys := make([]int64, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	points := make([]DataPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, DataPoint{
			Date:  dates[k],
			Color: seriesColor,
			Value: sums[k].InexactFloat64(),
		})
	}
	return TimeSeries{Label: "Energy Cost (USD)", Color: seriesColor, DataPoints: points}
}

// EmissionSeries plots emitted kg per step, each point colored by the tier
// the step was classified into.
func EmissionSeries(st *model.SimulationState) TimeSeries {
	points := make([]DataPoint, 0, len(st.Emissions))
	for i, e := range st.Emissions {
		color := model.TierNone.Color()
		if i < len(st.TaxCredits) {
			color = st.TaxCredits[i].Tier.Color()
		}
		points = append(points, DataPoint{Date: e.Timestamp, Color: color, Value: e.AmountEmittedKg})
	}
	return TimeSeries{Label: "Emissions (kg CO2)", Color: model.TierNone.Color(), DataPoints: points}
}

func HydrogenSeries(st *model.SimulationState) TimeSeries {
	points := make([]DataPoint, 0, len(st.HydrogenProductions))
	for _, h := range st.HydrogenProductions {
		points = append(points, DataPoint{Date: h.Timestamp, Color: seriesColor, Value: h.KgHydrogen})
	}
	return TimeSeries{Label: "Hydrogen Produced (kg)", Color: seriesColor, DataPoints: points}
}

type HistogramLabels struct {
	X string `json:"x"`
	Y string `json:"y"`
}

type HistogramDataset struct {
	Label      string    `json:"label"`
	DataPoints []float64 `json:"data_points"`
}

type Histogram struct {
	Labels   HistogramLabels    `json:"labels"`
	Keys     []string           `json:"keys"`
	Datasets []HistogramDataset `json:"datasets"`
}

// histogramOrder runs from no credit up to the full credit.
var histogramOrder = []model.TaxCredit45VTier{
	model.TierNone,
	model.Tier3,
	model.Tier2,
	model.Tier1,
	model.TierMax,
}

// TierHistogram shows how many hours of the run fell in each tier.
func TierHistogram(summary model.TaxCreditSummary) Histogram {
	h := Histogram{
		Labels: HistogramLabels{X: "Tax Credit Tier", Y: "Hours"},
		Keys:   make([]string, 0, len(histogramOrder)),
	}
	values := make([]float64, 0, len(histogramOrder))
	for _, tier := range histogramOrder {
		h.Keys = append(h.Keys, tier.Percent())
		values = append(values, summary.Hours(tier))
	}
	h.Datasets = []HistogramDataset{{Label: "Credit Breakdown", DataPoints: values}}
	return h
}
