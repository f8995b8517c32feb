package ledger

import "time"

// TimestampLayout is the wire format for transaction timestamps as stored
// in the backing row store.
const TimestampLayout = "2006-01-02 15:04:05"

// Transaction is one expense entry in the ledger.
type Transaction struct {
	Timestamp       string  `json:"timestamp"`        // local time in the configured timezone, TimestampLayout
	ForeignAmount   float64 `json:"foreign_amount"`   // amount in the foreign currency
	Rate            float64 `json:"rate"`             // conversion rate in effect at insertion time
	ConvertedAmount float64 `json:"converted_amount"` // ForeignAmount * Rate, frozen at write time
}

// NewTransaction builds a transaction stamped with the given local time,
// freezing the converted amount using the rate in effect now. Aggregates
// must reuse the stored value later, never recompute it from a fresh rate.
func NewTransaction(now time.Time, foreignAmount, rate float64) *Transaction {
	return &Transaction{
		Timestamp:       now.Format(TimestampLayout),
		ForeignAmount:   foreignAmount,
		Rate:            rate,
		ConvertedAmount: foreignAmount * rate,
	}
}

// Date returns the YYYY-MM-DD prefix of the transaction timestamp.
func (t *Transaction) Date() string {
	if len(t.Timestamp) < 10 {
		return t.Timestamp
	}
	return t.Timestamp[:10]
}
