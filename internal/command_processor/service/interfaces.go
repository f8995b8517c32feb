package service

import (
	"context"

	"github.com/expense-ledger-bot/internal/domain/shared"
)

// ProcessingService defines the interface for processing command events.
type ProcessingService interface {
	ProcessCommand(ctx context.Context, event *shared.CommandEvent) error
}
