package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/expense-ledger-bot/internal/domain/audit"
	"github.com/expense-ledger-bot/internal/domain/shared"
	"github.com/expense-ledger-bot/internal/interpreter"
	"github.com/expense-ledger-bot/internal/line"
)

// CommandInterpreter resolves one inbound text into one reply.
type CommandInterpreter interface {
	Handle(ctx context.Context, text string) interpreter.Result
}

type CommandProcessingService struct {
	interpreter CommandInterpreter
	dispatcher  line.ReplyDispatcher
	auditRepo   audit.Repository // nil when auditing is disabled
	logger      *slog.Logger
}

func NewCommandProcessingService(
	logger *slog.Logger,
	interp CommandInterpreter,
	dispatcher line.ReplyDispatcher,
	auditRepo audit.Repository,
) ProcessingService {
	return &CommandProcessingService{
		interpreter: interp,
		dispatcher:  dispatcher,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// ProcessCommand interprets the event's text and sends exactly one reply.
// Events already present in the audit log are skipped without a reply. A
// failed reply dispatch is returned to the consumer so the message is
// redelivered; a failed audit write is logged and swallowed.
func (s *CommandProcessingService) ProcessCommand(ctx context.Context, event *shared.CommandEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if s.alreadyProcessed(ctx, logger, event) {
		return nil
	}

	result := s.interpreter.Handle(ctx, event.Text)

	logger.Info("Interpreted command",
		"event_id", event.EventID.String(),
		"intent", result.Intent.String(),
		"outcome", string(result.Outcome),
	)

	if err := s.dispatcher.Reply(ctx, event.ReplyToken, result.Reply); err != nil {
		logger.Error("Failed to dispatch reply",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to dispatch reply for event %s: %w", event.EventID.String(), err)
	}

	s.writeAudit(ctx, logger, event, result)
	return nil
}

// alreadyProcessed reports whether an audit record for this event exists.
// The queue delivers at least once, and a commit lost after a successful
// reply must not trigger a second reply on redelivery. A failed lookup
// counts as not processed so an unavailable audit store never blocks
// replies.
func (s *CommandProcessingService) alreadyProcessed(ctx context.Context, logger *slog.Logger, event *shared.CommandEvent) bool {
	if s.auditRepo == nil {
		return false
	}

	if _, err := s.auditRepo.GetByEventID(ctx, event.EventID); err != nil {
		if !errors.Is(err, audit.ErrRecordNotFound{}) {
			logger.Warn("Failed to look up audit record",
				"event_id", event.EventID.String(),
				"error", err,
			)
		}
		return false
	}

	logger.Info("Skipping already processed event", "event_id", event.EventID.String())
	return true
}

func (s *CommandProcessingService) writeAudit(ctx context.Context, logger *slog.Logger, event *shared.CommandEvent, result interpreter.Result) {
	if s.auditRepo == nil {
		return
	}

	rec := &audit.Record{
		EventID:       event.EventID,
		Text:          event.Text,
		Intent:        result.Intent.String(),
		Reply:         result.Reply,
		Outcome:       string(result.Outcome),
		CorrelationID: event.CorrelationID,
		ProcessedAt:   time.Now().UTC(),
	}

	if err := s.auditRepo.Create(ctx, rec); err != nil {
		logger.Warn("Failed to write audit record",
			"event_id", event.EventID.String(),
			"error", err,
		)
	}
}
