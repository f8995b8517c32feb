package rate

import "context"

// Quote is the most recent published conversion rate for the configured
// currency pair at query time.
type Quote struct {
	Rate        float64 `json:"rate"`
	PublishedAt string  `json:"published_at"`
}

// Provider looks up a current quote by currency code. Implementations must
// not cache: every insertion and every current-total query fetches a fresh
// quote so the stored rate reflects the moment of the write.
type Provider interface {
	Now(ctx context.Context, currency string) (*Quote, error)
}
