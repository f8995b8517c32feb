// Package consumer adapts Kafka messages into command processing calls.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/expense-ledger-bot/internal/command_processor/service"
	"github.com/expense-ledger-bot/internal/domain/shared"
	"github.com/expense-ledger-bot/internal/platform/messaging/producers"
)

// CommandEventHandler handles incoming command event messages from Kafka
type CommandEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewCommandEventHandler creates a new handler
func NewCommandEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *CommandEventHandler {
	return &CommandEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages. Unparsable payloads go to the
// DLQ and are committed; processing failures are returned so the offset
// stays uncommitted and the message is redelivered.
func (h *CommandEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.CommandEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal command event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				// Message parked, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received command event for processing",
		"event_id", event.EventID.String(),
		"user_id", event.UserID,
	)

	if err := h.processingService.ProcessCommand(ctx, &event); err != nil {
		logger.Error("Failed to process command event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("processing command event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully processed command event", "event_id", event.EventID.String())
	return nil // Success, commit offset
}
