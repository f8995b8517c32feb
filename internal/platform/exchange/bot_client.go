// Package exchange fetches currency quotes from the Bank of Taiwan daily
// rate feed.
package exchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/expense-ledger-bot/internal/config"
	"github.com/expense-ledger-bot/internal/domain/rate"
)

const feedPath = "/xrt/flcsv/0/day"

// CSV column offsets in the daily feed. The first column is the currency
// code; buy columns come before sell columns.
const (
	colCashBuy  = 2
	colSpotBuy  = 3
	colCashSell = 12
	colSpotSell = 13
)

// quoteFieldCount is the size of the tuple built per currency:
// published time, cash buy, cash sell, spot buy, spot sell.
const quoteFieldCount = 5

// BOTClient implements rate.Provider against the Bank of Taiwan CSV feed.
// Quotes are fetched fresh on every call.
type BOTClient struct {
	baseURL    string
	quoteIndex int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewBOTClient creates a feed client from the rate section of the config.
func NewBOTClient(cfg *config.RateConfig, logger *slog.Logger) *BOTClient {
	return &BOTClient{
		baseURL:    cfg.BaseURL,
		quoteIndex: cfg.QuoteIndex,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Now fetches the current quote for the given currency code.
func (c *BOTClient) Now(ctx context.Context, currency string) (*rate.Quote, error) {
	if c.quoteIndex < 1 || c.quoteIndex >= quoteFieldCount {
		return nil, fmt.Errorf("quote index %d out of range [1,%d)", c.quoteIndex, quoteFieldCount)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+feedPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	fields, err := findCurrencyRow(resp.Body, currency)
	if err != nil {
		return nil, err
	}

	quote, err := buildQuote(fields, publishedAt(resp.Header), c.quoteIndex)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched currency quote",
		"currency", currency,
		"rate", quote.Rate,
		"published_at", quote.PublishedAt)
	return quote, nil
}

// findCurrencyRow scans the CSV for the row whose first field matches the
// currency code and returns its fields.
func findCurrencyRow(body io.Reader, currency string) ([]string, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate feed: %w", err)
		}
		if len(record) > colSpotSell && record[0] == currency {
			return record, nil
		}
	}
	return nil, fmt.Errorf("currency %s not found in rate feed", currency)
}

// buildQuote assembles the per-currency tuple and selects the configured
// field. Index 0 is the published time; 1..4 are cash buy, cash sell,
// spot buy and spot sell.
func buildQuote(fields []string, published string, index int) (*rate.Quote, error) {
	values := []string{published, fields[colCashBuy], fields[colCashSell], fields[colSpotBuy], fields[colSpotSell]}

	parsed, err := strconv.ParseFloat(values[index], 64)
	if err != nil {
		return nil, fmt.Errorf("rate feed value %q is not numeric: %w", values[index], err)
	}
	if parsed <= 0 {
		return nil, fmt.Errorf("rate feed value %v is not a usable rate", parsed)
	}

	return &rate.Quote{Rate: parsed, PublishedAt: published}, nil
}

// publishedAt derives the quote time from the response headers. The feed
// sets Last-Modified to the board time; Date is the fallback.
func publishedAt(header http.Header) string {
	for _, key := range []string{"Last-Modified", "Date"} {
		if value := header.Get(key); value != "" {
			if ts, err := time.Parse(http.TimeFormat, value); err == nil {
				return ts.UTC().Format("2006/01/02 15:04")
			}
			return value
		}
	}
	return ""
}
