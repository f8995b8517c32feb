// Package handler contains the webhook gateway HTTP handlers.
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expense-ledger-bot/internal/domain/shared"
	"github.com/expense-ledger-bot/internal/line"
	"github.com/expense-ledger-bot/internal/platform/messaging/producers"
	"github.com/expense-ledger-bot/internal/webhook_gateway/middleware"
)

// SignatureHeader carries the webhook request signature.
const SignatureHeader = "X-Line-Signature"

// WebhookHandler verifies inbound webhook requests and publishes one
// command event per text message.
type WebhookHandler struct {
	logger        *slog.Logger
	channelSecret string
	publisher     producers.MessagePublisher
}

// NewWebhookHandler creates a webhook handler bound to the channel secret
// used for signature verification.
func NewWebhookHandler(logger *slog.Logger, channelSecret string, publisher producers.MessagePublisher) *WebhookHandler {
	return &WebhookHandler{
		logger:        logger,
		channelSecret: channelSecret,
		publisher:     publisher,
	}
}

// Callback handles POST /callback. A publish failure returns 500 so the
// messaging platform redelivers the webhook.
func (h *WebhookHandler) Callback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", "error", err)
		c.String(http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if !line.ValidateSignature(h.channelSecret, body, signature) {
		h.logger.Warn("Rejected webhook with invalid signature", "client_ip", c.ClientIP())
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	req, err := line.ParseWebhook(body)
	if err != nil {
		h.logger.Warn("Failed to parse webhook payload", "error", err)
		c.String(http.StatusBadRequest, "invalid payload")
		return
	}

	correlationID := middleware.GetCorrelationID(c)

	for _, event := range req.Events {
		if !event.IsTextMessage() {
			continue
		}

		cmd := &shared.CommandEvent{
			EventID:       uuid.New(),
			ReplyToken:    event.ReplyToken,
			Text:          strings.TrimSpace(event.Message.Text),
			UserID:        event.Source.UserID,
			CorrelationID: correlationID,
			ReceivedAt:    time.Now().UTC(),
		}

		if err := h.publisher.Publish(c.Request.Context(), cmd.ReplyToken, cmd); err != nil {
			h.logger.Error("Failed to publish command event",
				"event_id", cmd.EventID.String(),
				"correlation_id", correlationID,
				"error", err,
			)
			c.String(http.StatusInternalServerError, "failed to enqueue command")
			return
		}

		h.logger.Info("Enqueued command event",
			"event_id", cmd.EventID.String(),
			"user_id", cmd.UserID,
			"correlation_id", correlationID,
		)
	}

	c.String(http.StatusOK, "OK")
}
