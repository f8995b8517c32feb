package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/expense-ledger-bot/internal/domain/shared"
)

// MockProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessCommand(ctx context.Context, event *shared.CommandEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockDeadLetterPublisher for testing
type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, value []byte, reason string) error {
	args := m.Called(ctx, key, value, reason)
	return args.Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestHandleMessage(t *testing.T) {
	logger := slog.Default()

	validEvent := &shared.CommandEvent{
		EventID:       uuid.New(),
		ReplyToken:    "reply-token-1",
		Text:          "2000",
		UserID:        "U123",
		CorrelationID: "corr1",
		ReceivedAt:    time.Now().UTC(),
	}

	validJSON, err := json.Marshal(validEvent)
	assert.NoError(t, err)

	tests := []struct {
		name          string
		key           []byte
		value         []byte
		setupMocks    func(svc *MockProcessingService, dlq *MockDeadLetterPublisher)
		expectedError error
	}{
		{
			name:  "successful processing",
			key:   []byte("reply-token-1"),
			value: validJSON,
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				svc.On("ProcessCommand", mock.Anything, mock.MatchedBy(func(e *shared.CommandEvent) bool {
					return e.EventID == validEvent.EventID && e.Text == "2000"
				})).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "processing error",
			key:   []byte("reply-token-1"),
			value: validJSON,
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				svc.On("ProcessCommand", mock.Anything, mock.Anything).Return(errors.New("processing error"))
			},
			expectedError: errors.New("processing command event"),
		},
		{
			name:  "unmarshal error with successful DLQ publish",
			key:   []byte("reply-token-1"),
			value: []byte("invalid json"),
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", mock.Anything, "reply-token-1", []byte("invalid json"), mock.Anything).Return(nil)
			},
			expectedError: nil, // No error because message was successfully sent to DLQ
		},
		{
			name:  "unmarshal error with DLQ publish failure",
			key:   []byte("reply-token-1"),
			value: []byte("invalid json"),
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", mock.Anything, "reply-token-1", []byte("invalid json"), mock.Anything).Return(errors.New("dlq error"))
			},
			expectedError: errors.New("failed to unmarshal"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProcessingService := &MockProcessingService{}
			mockDLQPublisher := &MockDeadLetterPublisher{}
			mockDLQPublisher.On("Close").Return(nil).Maybe()

			handler := NewCommandEventHandler(logger, mockProcessingService, mockDLQPublisher)

			tt.setupMocks(mockProcessingService, mockDLQPublisher)
			ctx := context.Background()

			err := handler.HandleMessage(ctx, tt.key, tt.value)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockProcessingService.AssertExpectations(t)
			mockDLQPublisher.AssertExpectations(t)
		})
	}
}

func TestHandleMessage_NoDLQConfigured(t *testing.T) {
	logger := slog.Default()
	mockProcessingService := &MockProcessingService{}

	handler := NewCommandEventHandler(logger, mockProcessingService, nil)

	err := handler.HandleMessage(context.Background(), []byte("key"), []byte("invalid json"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
	mockProcessingService.AssertNotCalled(t, "ProcessCommand", mock.Anything, mock.Anything)
}
