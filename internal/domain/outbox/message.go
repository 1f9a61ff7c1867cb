package outbox

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a row in the `outbox_messages` table. It is written in the same
// local transaction as the aggregate mutation that raised the event, then
// delivered asynchronously by the publisher. The ID doubles as the broker
// message identifier so downstream consumers can deduplicate.
type Message struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	ProcessedAt   *time.Time
	RetryCount    int
	LastError     *string
	ClaimedUntil  *time.Time
}

var (
	ErrAggregateTypeRequired = errors.New("aggregate type is required")
	ErrAggregateIDRequired   = errors.New("aggregate id is required")
	ErrEventTypeRequired     = errors.New("event type is required")
	ErrPayloadRequired       = errors.New("payload is required")
)

// NewMessage constructs an unprocessed outbox message with a fresh UUID.
func NewMessage(aggregateType, aggregateID, eventType string, payload []byte) (*Message, error) {
	if aggregateType = strings.TrimSpace(aggregateType); aggregateType == "" {
		return nil, ErrAggregateTypeRequired
	}
	if aggregateID = strings.TrimSpace(aggregateID); aggregateID == "" {
		return nil, ErrAggregateIDRequired
	}
	if eventType = strings.TrimSpace(eventType); eventType == "" {
		return nil, ErrEventTypeRequired
	}
	if len(payload) == 0 {
		return nil, ErrPayloadRequired
	}

	return &Message{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Processed reports whether the message has already been delivered.
func (message *Message) Processed() bool {
	return message.ProcessedAt != nil
}

// Exhausted reports whether the message has used up its retry budget and now
// needs operator attention.
func (message *Message) Exhausted(maxRetries int) bool {
	return !message.Processed() && message.RetryCount >= maxRetries
}
