package exchange

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-ledger-bot/internal/config"
)

// One header row plus two currency rows shaped like the daily feed: the
// currency code first, buy columns before sell columns.
const feedCSV = `幣別,匯率,現金,即期,遠期10天,遠期30天,遠期60天,遠期90天,遠期120天,遠期150天,遠期180天,匯率,現金,即期,遠期10天,遠期30天,遠期60天,遠期90天,遠期120天,遠期150天,遠期180天
USD,本行買入,31.305,31.655,31.62,31.57,31.51,31.45,31.4,31.35,31.3,本行賣出,31.975,31.755,31.72,31.68,31.63,31.58,31.54,31.5,31.46
JPY,本行買入,0.2011,0.2065,0.2063,0.2059,0.2054,0.2049,0.2044,0.2039,0.2034,本行賣出,0.2121,0.2105,0.2103,0.2099,0.2095,0.2091,0.2087,0.2083,0.2079
`

func testClient(t *testing.T, serverURL string, quoteIndex int) *BOTClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBOTClient(&config.RateConfig{
		BaseURL:    serverURL,
		QuoteIndex: quoteIndex,
		Timeout:    2 * time.Second,
	}, logger)
}

func TestBOTClient_Now(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrt/flcsv/0/day", r.URL.Path)
		w.Header().Set("Last-Modified", "Mon, 27 Nov 2023 08:00:00 GMT")
		w.Write([]byte(feedCSV))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)
	quote, err := client.Now(context.Background(), "JPY")

	require.NoError(t, err)
	// Index 2 selects the cash sell column.
	assert.Equal(t, 0.2121, quote.Rate)
	assert.Equal(t, "2023/11/27 08:00", quote.PublishedAt)
}

func TestBOTClient_NowQuoteIndexSelectsColumn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedCSV))
	}))
	defer server.Close()

	tests := []struct {
		name  string
		index int
		want  float64
	}{
		{"CashBuy", 1, 0.2011},
		{"CashSell", 2, 0.2121},
		{"SpotBuy", 3, 0.2065},
		{"SpotSell", 4, 0.2105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, server.URL, tt.index)
			quote, err := client.Now(context.Background(), "JPY")
			require.NoError(t, err)
			assert.Equal(t, tt.want, quote.Rate)
		})
	}
}

func TestBOTClient_NowCurrencyNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedCSV))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)
	_, err := client.Now(context.Background(), "KRW")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "KRW not found")
}

func TestBOTClient_NowFeedDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)
	_, err := client.Now(context.Background(), "JPY")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestBOTClient_NowNonNumericColumn(t *testing.T) {
	// The feed publishes "-" for currencies without a cash rate.
	dashCSV := "JPY,本行買入,-,0.2065,0,0,0,0,0,0,0,本行賣出,-,0.2105,0,0,0,0,0,0,0\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dashCSV))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)
	_, err := client.Now(context.Background(), "JPY")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestBOTClient_NowQuoteIndexOutOfRange(t *testing.T) {
	client := testClient(t, "http://localhost:0", 7)
	_, err := client.Now(context.Background(), "JPY")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
