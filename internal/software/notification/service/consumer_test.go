package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

type memDedup struct {
	seen map[string]bool
}

func (m *memDedup) Seen(ctx context.Context, id string) (bool, error) {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	was := m.seen[id]
	m.seen[id] = true
	return was, nil
}

func delivery(t *testing.T, messageID string) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(contracts.EventMessage{
		AggregateType: contracts.AggregateBooking,
		AggregateID:   "bk-1",
		EventType:     "BOOKING_CONFIRMED",
		OccurredAt:    time.Now().UTC(),
		Data:          map[string]any{"ride_id": "ride-1"},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return amqp.Delivery{MessageId: messageID, Type: "BOOKING_CONFIRMED", Body: body}
}

func TestHandleAcksValidMessage(t *testing.T) {
	svc := NewNotificationService(logger.New("notification-test"), nil, &memDedup{})

	if err := svc.handle(context.Background(), delivery(t, "msg-1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestHandleSkipsDuplicates(t *testing.T) {
	dedup := &memDedup{}
	svc := NewNotificationService(logger.New("notification-test"), nil, dedup)

	if err := svc.handle(context.Background(), delivery(t, "msg-1")); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	if err := svc.handle(context.Background(), delivery(t, "msg-1")); err != nil {
		t.Fatalf("duplicate handle must ack, got %v", err)
	}
	if !dedup.seen["msg-1"] {
		t.Error("message id not recorded in dedup store")
	}
}

func TestHandleRejectsBrokenPayload(t *testing.T) {
	svc := NewNotificationService(logger.New("notification-test"), nil, &memDedup{})

	err := svc.handle(context.Background(), amqp.Delivery{MessageId: "msg-2", Body: []byte("not json")})
	if err == nil {
		t.Fatal("expected error for undecodable payload")
	}
}
