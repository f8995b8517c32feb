package shared

import (
	"time"

	"github.com/google/uuid"
)

// CommandEvent defines a Kafka message carrying one inbound text command
// from the messaging transport to the command processor.
type CommandEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	ReplyToken    string    `json:"reply_token"`
	Text          string    `json:"text"`
	UserID        string    `json:"user_id,omitempty"`
	CorrelationID string    `json:"correlation_id"`
	ReceivedAt    time.Time `json:"received_at"`
}
