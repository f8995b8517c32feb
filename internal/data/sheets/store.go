// Package sheets implements the ledger store on a Google Sheets
// worksheet: one row per transaction, appended in order.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/expense-ledger-bot/internal/config"
	"github.com/expense-ledger-bot/internal/domain/ledger"
)

var headerRow = []interface{}{"timestamp", "foreign_amount", "rate", "converted_amount"}

// Store implements ledger.Store against a single worksheet. Rows are
// append-only; DeleteLast removes the bottom data row.
type Store struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	sheetID       int64
	timeout       time.Duration
	logger        *slog.Logger
}

// NewStore builds the Sheets client, resolves the worksheet ID and
// writes the header row if the sheet is empty.
func NewStore(ctx context.Context, logger *slog.Logger, cfg *config.SheetsConfig) (*Store, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	store := &Store{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		timeout:       cfg.Timeout,
		logger:        logger,
	}

	if err := store.resolveSheetID(ctx); err != nil {
		return nil, err
	}
	if err := store.ensureHeader(ctx); err != nil {
		return nil, err
	}

	logger.Info("Connected to Google Sheets ledger",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName,
	)
	return store, nil
}

// Append writes a transaction as a new bottom row.
func (s *Store) Append(ctx context.Context, tx *ledger.Transaction) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// RAW keeps the timestamp cell a literal string. USER_ENTERED would let
	// Sheets coerce it into a datetime serial that reads back in the
	// spreadsheet locale's display format, no longer matching date prefixes.
	values := &sheets.ValueRange{
		Values: [][]interface{}{{tx.Timestamp, tx.ForeignAmount, tx.Rate, tx.ConvertedAmount}},
	}
	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.dataRange(), values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(callCtx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append ledger row: %w", err)
	}

	s.logger.Debug("Appended ledger row",
		"timestamp", tx.Timestamp,
		"foreign_amount", tx.ForeignAmount,
	)
	return nil
}

// ReadAll returns every data row in sheet order.
func (s *Store) ReadAll(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return []ledger.Transaction{}, nil
	}

	records := make([]ledger.Transaction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, s.parseRow(row))
	}
	return records, nil
}

// DeleteLast removes the bottom data row and returns it. Returns
// ledger.ErrEmptyLedger when only the header is present.
func (s *Store) DeleteLast(ctx context.Context) (*ledger.Transaction, error) {
	rows, err := s.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, ledger.ErrEmptyLedger
	}

	lastIndex := len(rows) - 1
	removed := s.parseRow(rows[lastIndex])

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	request := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(lastIndex),
					EndIndex:   int64(lastIndex + 1),
				},
			},
		}},
	}
	_, err = s.service.Spreadsheets.
		BatchUpdate(s.spreadsheetID, request).
		Context(callCtx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to delete last ledger row: %w", err)
	}

	s.logger.Debug("Deleted last ledger row", "timestamp", removed.Timestamp)
	return &removed, nil
}

func (s *Store) dataRange() string {
	return fmt.Sprintf("%s!A:D", s.sheetName)
}

func (s *Store) fetchRows(ctx context.Context) ([][]interface{}, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, s.dataRange()).
		Context(callCtx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}
	return resp.Values, nil
}

// parseRow converts one sheet row. Short or malformed rows do not abort
// a read: missing cells become empty strings and unparsable numeric
// cells become zero, so one hand-edited row cannot take queries down.
func (s *Store) parseRow(row []interface{}) ledger.Transaction {
	return ledger.Transaction{
		Timestamp:       s.cellString(row, 0),
		ForeignAmount:   s.cellFloat(row, 1),
		Rate:            s.cellFloat(row, 2),
		ConvertedAmount: s.cellFloat(row, 3),
	}
}

func (s *Store) cellString(row []interface{}, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[index]))
}

func (s *Store) cellFloat(row []interface{}, index int) float64 {
	raw := s.cellString(row, index)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		s.logger.Warn("Skipping unparsable ledger cell", "value", raw, "column", index)
		return 0
	}
	return value
}

func (s *Store) resolveSheetID(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	meta, err := s.service.Spreadsheets.
		Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(callCtx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to load spreadsheet metadata: %w", err)
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.sheetName {
			s.sheetID = sheet.Properties.SheetId
			return nil
		}
	}
	return fmt.Errorf("worksheet %q not found in spreadsheet %s", s.sheetName, s.spreadsheetID)
}

func (s *Store) ensureHeader(ctx context.Context) error {
	rows, err := s.fetchRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.dataRange(), &sheets.ValueRange{Values: [][]interface{}{headerRow}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(callCtx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write ledger header row: %w", err)
	}
	return nil
}

// Compile-time check
var _ ledger.Store = (*Store)(nil)
