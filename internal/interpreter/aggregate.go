package interpreter

import (
	"strings"

	"github.com/expense-ledger-bot/internal/domain/ledger"
)

// DaySummary aggregates one calendar date's transactions.
type DaySummary struct {
	Count          int
	ForeignTotal   float64
	ConvertedTotal float64
}

// TotalForeign sums the foreign amounts over all records. Store adapters
// parse malformed cells to zero, so a corrupt row weighs nothing here
// instead of failing the whole aggregate.
func TotalForeign(records []ledger.Transaction) float64 {
	var total float64
	for _, tx := range records {
		total += tx.ForeignAmount
	}
	return total
}

// TotalConverted values the whole ledger at the current rate. This is
// deliberately not the sum of stored converted amounts: the current total
// answers "what would this much foreign currency be worth today", while a
// day query answers "what did I actually pay" from each record's own stored
// rate.
func TotalConverted(records []ledger.Transaction, currentRate float64) float64 {
	return TotalForeign(records) * currentRate
}

// SummarizeDay filters records whose timestamp date-prefix equals
// targetDate, counting matches and summing foreign amounts along with each
// record's stored converted amount so historical rates are preserved. Zero
// matches is a valid, reportable outcome.
func SummarizeDay(records []ledger.Transaction, targetDate string) DaySummary {
	var summary DaySummary
	for _, tx := range records {
		if !strings.HasPrefix(tx.Timestamp, targetDate) {
			continue
		}
		summary.Count++
		summary.ForeignTotal += tx.ForeignAmount
		summary.ConvertedTotal += tx.ConvertedAmount
	}
	return summary
}
