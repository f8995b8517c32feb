package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists command audit records
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Record, error)
}

// ErrRecordNotFound indicates a missing audit record
type ErrRecordNotFound struct {
	EventID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "audit record not found: " + e.EventID.String()
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}
