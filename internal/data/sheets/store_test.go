package sheets

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/expense-ledger-bot/internal/domain/ledger"
)

func testStore() *Store {
	return &Store{
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

// fakeSheet backs an httptest server with an in-memory worksheet so the
// append and read paths can run against the real API client.
type fakeSheet struct {
	mu              sync.Mutex
	rows            [][]interface{}
	lastInputOption string
}

func (f *fakeSheet) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, ":append"):
			f.lastInputOption = r.URL.Query().Get("valueInputOption")
			var body sheets.ValueRange
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.rows = append(f.rows, body.Values...)
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet:
			require.NoError(t, json.NewEncoder(w).Encode(&sheets.ValueRange{Values: f.rows}))
		default:
			t.Errorf("unexpected sheets API call: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func newServerBackedStore(t *testing.T, sheet *fakeSheet) *Store {
	srv := httptest.NewServer(sheet.handler(t))
	t.Cleanup(srv.Close)

	service, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	store := testStore()
	store.service = service
	store.spreadsheetID = "spreadsheet-1"
	store.sheetName = "ledger"
	store.timeout = 2 * time.Second
	return store
}

func TestStore_AppendWritesLiteralValues(t *testing.T) {
	sheet := &fakeSheet{rows: [][]interface{}{headerRow}}
	store := newServerBackedStore(t, sheet)

	err := store.Append(context.Background(), &ledger.Transaction{
		Timestamp:       "2023-11-27 19:00:00",
		ForeignAmount:   2000,
		Rate:            0.21,
		ConvertedAmount: 420,
	})
	require.NoError(t, err)

	// RAW stops the API from coercing the timestamp into a locale-formatted
	// datetime that would break date-prefix matching on read-back.
	assert.Equal(t, "RAW", sheet.lastInputOption)
	require.Len(t, sheet.rows, 2)
	assert.Equal(t, "2023-11-27 19:00:00", sheet.rows[1][0])
	assert.Equal(t, 2000.0, sheet.rows[1][1])
}

func TestStore_AppendReadAllRoundTrip(t *testing.T) {
	sheet := &fakeSheet{rows: [][]interface{}{headerRow}}
	store := newServerBackedStore(t, sheet)
	ctx := context.Background()

	first := &ledger.Transaction{Timestamp: "2023-11-27 19:00:00", ForeignAmount: 2000, Rate: 0.21, ConvertedAmount: 420}
	second := &ledger.Transaction{Timestamp: "2023-11-28 09:30:00", ForeignAmount: 500, Rate: 0.2, ConvertedAmount: 100}
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	records, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, *first, records[0])
	assert.Equal(t, *second, records[1])
	assert.True(t, strings.HasPrefix(records[0].Timestamp, "2023-11-27"))
}

func TestStore_ParseRow(t *testing.T) {
	store := testStore()

	tests := []struct {
		name string
		row  []interface{}
		want ledger.Transaction
	}{
		{
			name: "CompleteRow",
			row:  []interface{}{"2023-11-27 19:00:00", "3000", "0.21", "630"},
			want: ledger.Transaction{Timestamp: "2023-11-27 19:00:00", ForeignAmount: 3000, Rate: 0.21, ConvertedAmount: 630},
		},
		{
			name: "NumericCellsFromAPI",
			row:  []interface{}{"2023-11-27 19:00:00", 3000.0, 0.21, 630.0},
			want: ledger.Transaction{Timestamp: "2023-11-27 19:00:00", ForeignAmount: 3000, Rate: 0.21, ConvertedAmount: 630},
		},
		{
			name: "ThousandsSeparator",
			row:  []interface{}{"2023-11-27 19:00:00", "12,500", "0.21", "2,625"},
			want: ledger.Transaction{Timestamp: "2023-11-27 19:00:00", ForeignAmount: 12500, Rate: 0.21, ConvertedAmount: 2625},
		},
		{
			name: "ShortRow",
			row:  []interface{}{"2023-11-27 19:00:00"},
			want: ledger.Transaction{Timestamp: "2023-11-27 19:00:00"},
		},
		{
			name: "HandEditedGarbageCell",
			row:  []interface{}{"2023-11-27 19:00:00", "lunch", "0.21", "630"},
			want: ledger.Transaction{Timestamp: "2023-11-27 19:00:00", ForeignAmount: 0, Rate: 0.21, ConvertedAmount: 630},
		},
		{
			name: "EmptyRow",
			row:  []interface{}{},
			want: ledger.Transaction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.parseRow(tt.row))
		})
	}
}

func TestStore_CellFloat(t *testing.T) {
	store := testStore()

	assert.Equal(t, 0.21, store.cellFloat([]interface{}{"0.21"}, 0))
	assert.Equal(t, 0.0, store.cellFloat([]interface{}{" "}, 0))
	assert.Equal(t, 0.0, store.cellFloat([]interface{}{"abc"}, 0))
	assert.Equal(t, 0.0, store.cellFloat([]interface{}{"0.21"}, 5))
}

func TestStore_DataRange(t *testing.T) {
	store := testStore()
	store.sheetName = "Sheet1"
	assert.Equal(t, "Sheet1!A:D", store.dataRange())
}
