package audit

import (
	"time"

	"github.com/google/uuid"
)

// Record captures one processed command for operator visibility.
type Record struct {
	EventID       uuid.UUID `bson:"event_id"`
	Text          string    `bson:"text"`
	Intent        string    `bson:"intent"`
	Reply         string    `bson:"reply"`
	Outcome       string    `bson:"outcome"`
	CorrelationID string    `bson:"correlation_id,omitempty"`
	ProcessedAt   time.Time `bson:"processed_at"`
}
