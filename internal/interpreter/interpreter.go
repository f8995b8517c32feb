package interpreter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/expense-ledger-bot/internal/config"
	"github.com/expense-ledger-bot/internal/domain/ledger"
	"github.com/expense-ledger-bot/internal/domain/rate"
)

// Outcome classifies how a command was handled, for the audit trail.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeParseError      Outcome = "parse_error"
	OutcomeEmptyLedger     Outcome = "empty_ledger"
	OutcomeUpstreamFailure Outcome = "upstream_failure"
)

// Result is the outcome of interpreting one inbound message. Reply is
// always non-empty: every message produces exactly one reply.
type Result struct {
	Intent  IntentKind
	Reply   string
	Outcome Outcome
	Err     error // set when Outcome is OutcomeUpstreamFailure
}

// Interpreter orchestrates classification, ledger access, and rate lookup
// for one inbound message at a time. It holds no state across messages, so
// a single instance may serve concurrent requests; concurrent mutations
// race at the storage layer (single-user, low-frequency usage assumption).
type Interpreter struct {
	classifier   *Classifier
	store        ledger.Store
	rates        rate.Provider
	logger       *slog.Logger
	currency     string
	homeCurrency string
	location     *time.Location
	now          func() time.Time
}

// New creates a command interpreter over the given ledger store and rate
// provider.
func New(logger *slog.Logger, cfg *config.LedgerConfig, store ledger.Store, rates rate.Provider) *Interpreter {
	return &Interpreter{
		classifier:   NewClassifier(cfg),
		store:        store,
		rates:        rates,
		logger:       logger,
		currency:     cfg.Currency,
		homeCurrency: cfg.HomeCurrency,
		location:     cfg.Location(),
		now:          time.Now,
	}
}

// Handle interprets one inbound message and produces its single reply.
func (i *Interpreter) Handle(ctx context.Context, text string) Result {
	intent := i.classifier.Classify(text)

	switch intent.Kind {
	case IntentDeleteLast:
		return i.deleteLast(ctx)
	case IntentTotal:
		return i.total(ctx)
	case IntentDayQuery:
		return i.dayQuery(ctx, intent)
	case IntentRecord:
		return i.record(ctx, intent)
	default:
		return Result{Intent: IntentUnrecognized, Reply: replyUnrecognized, Outcome: OutcomeParseError}
	}
}

// record fetches a fresh quote, freezes the conversion at the current rate,
// and appends one transaction stamped with the configured timezone's time.
func (i *Interpreter) record(ctx context.Context, intent Intent) Result {
	quote, err := i.rates.Now(ctx, i.currency)
	if err != nil {
		return i.fail(IntentRecord, err)
	}

	tx := ledger.NewTransaction(i.now().In(i.location), intent.Amount, quote.Rate)
	if err := i.store.Append(ctx, tx); err != nil {
		return i.fail(IntentRecord, err)
	}

	i.logger.Info("recorded transaction",
		"timestamp", tx.Timestamp,
		"foreign_amount", tx.ForeignAmount,
		"rate", tx.Rate,
		"converted_amount", tx.ConvertedAmount,
	)
	return Result{Intent: IntentRecord, Reply: i.recordReply(tx), Outcome: OutcomeOK}
}

func (i *Interpreter) deleteLast(ctx context.Context) Result {
	removed, err := i.store.DeleteLast(ctx)
	if errors.Is(err, ledger.ErrEmptyLedger) {
		return Result{Intent: IntentDeleteLast, Reply: replyEmptyDelete, Outcome: OutcomeEmptyLedger}
	}
	if err != nil {
		return i.fail(IntentDeleteLast, err)
	}

	i.logger.Info("deleted last transaction", "timestamp", removed.Timestamp, "foreign_amount", removed.ForeignAmount)
	return Result{Intent: IntentDeleteLast, Reply: i.deleteReply(removed), Outcome: OutcomeOK}
}

// total reads the whole ledger and values it at a freshly fetched rate.
func (i *Interpreter) total(ctx context.Context) Result {
	records, err := i.store.ReadAll(ctx)
	if err != nil {
		return i.fail(IntentTotal, err)
	}

	quote, err := i.rates.Now(ctx, i.currency)
	if err != nil {
		return i.fail(IntentTotal, err)
	}

	totalForeign := TotalForeign(records)
	totalConverted := TotalConverted(records, quote.Rate)
	return Result{Intent: IntentTotal, Reply: i.totalReply(totalForeign, totalConverted, quote), Outcome: OutcomeOK}
}

// dayQuery summarizes one calendar date from stored values only; the ledger
// is not touched when the explicit date failed to resolve.
func (i *Interpreter) dayQuery(ctx context.Context, intent Intent) Result {
	if intent.Date == "" {
		return Result{Intent: IntentDayQuery, Reply: replyBadDate, Outcome: OutcomeParseError}
	}

	records, err := i.store.ReadAll(ctx)
	if err != nil {
		return i.fail(IntentDayQuery, err)
	}

	summary := SummarizeDay(records, intent.Date)
	return Result{Intent: IntentDayQuery, Reply: i.daySummaryReply(intent.Date, summary), Outcome: OutcomeOK}
}

// fail maps an upstream store or rate-provider error to the generic failure
// reply, logging the full error for operator visibility.
func (i *Interpreter) fail(kind IntentKind, err error) Result {
	i.logger.Error("command failed against upstream", "intent", kind.String(), "error", err)
	return Result{Intent: kind, Reply: failureReply(err), Outcome: OutcomeUpstreamFailure, Err: err}
}
