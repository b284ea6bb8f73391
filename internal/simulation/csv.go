package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeLedgerCSV(f, ledger)
}

func EncodeLedgerCSV(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	header := []string{
		"index",
		"timestamp_utc",
		"plants",
		"purchased_mwh",
		"cost_usd",
		"emitted_kg_co2",
		"hydrogen_kg",
		"tier",
		"credit_usd",
		"cum_credit_usd",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Timestamp),
			strconv.Itoa(r.Plants),
			fmtFloat(r.PurchasedMWh),
			fmtUSD(r.CostUSD),
			fmtFloat(r.EmittedKg),
			fmtFloat(r.HydrogenKg),
			string(r.Tier),
			fmtUSD(r.CreditUSD),
			fmtUSD(r.CumCreditUSD),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fmtUSD(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}
