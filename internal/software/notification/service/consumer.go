package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/logger"
	"ride-booking/internal/general/rabbitmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationService consumes ride and booking events from the notifications
// queue and turns them into user-facing notifications. For now a notification
// is a structured log line; the delivery channel behind it can change without
// touching the consumption logic.
type NotificationService struct {
	logger *logger.Logger
	mq     *rabbitmq.Client
	dedup  DedupStore
}

// NewNotificationService wires the consumer with its dedup store.
func NewNotificationService(logger *logger.Logger, mq *rabbitmq.Client, dedup DedupStore) *NotificationService {
	return &NotificationService{logger: logger, mq: mq, dedup: dedup}
}

// Run consumes the notifications queue until ctx is cancelled.
func (service *NotificationService) Run(ctx context.Context, prefetch int) error {
	return service.mq.Consume(ctx, contracts.QueueNotifications, "notification-service", prefetch, service.handle)
}

// handle processes one delivery. Returning an error nacks the message.
func (service *NotificationService) handle(ctx context.Context, d amqp.Delivery) error {
	// the broker MessageId is the outbox row id; use it to absorb redeliveries
	if d.MessageId != "" {
		seen, err := service.dedup.Seen(ctx, d.MessageId)
		if err != nil {
			// fail open: a dedup outage must not drop notifications, a
			// duplicate is the lesser evil
			service.logger.Error(ctx, "dedup_check_failed", "Dedup store unavailable, processing anyway", err, map[string]any{
				"message_id": d.MessageId,
			})
		} else if seen {
			service.logger.Debug(ctx, "notification_duplicate", "Skipping already handled message", map[string]any{
				"message_id": d.MessageId,
			})
			return nil
		}
	}

	var msg contracts.EventMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return fmt.Errorf("decode event message: %w", err)
	}

	service.notify(ctx, msg)
	return nil
}

// notify renders the event as a notification line.
func (service *NotificationService) notify(ctx context.Context, msg contracts.EventMessage) {
	switch msg.AggregateType {
	case contracts.AggregateRide:
		ctx = service.logger.WithRideID(ctx, msg.AggregateID)
	case contracts.AggregateBooking:
		ctx = service.logger.WithBookingID(ctx, msg.AggregateID)
	}

	service.logger.Info(ctx, "notification_sent", summary(msg), map[string]any{
		"aggregate_type": msg.AggregateType,
		"aggregate_id":   msg.AggregateID,
		"event_type":     msg.EventType,
		"occurred_at":    msg.OccurredAt,
		"data":           msg.Data,
	})
}

// summary builds the human-readable notification text per event type.
func summary(msg contracts.EventMessage) string {
	switch msg.EventType {
	case "RIDE_CREATED":
		return "A new ride was published"
	case "SEATS_RESERVED":
		return "Seats were reserved on a ride"
	case "SEATS_RELEASED":
		return "Seats were released back to a ride"
	case "RIDE_STARTED":
		return "Your ride has started"
	case "RIDE_COMPLETED":
		return "Your ride was completed"
	case "RIDE_CANCELLED":
		return "Your ride was cancelled"
	case "BOOKING_CREATED":
		return "Your booking request was received"
	case "BOOKING_CONFIRMED":
		return "Your booking was confirmed"
	case "BOOKING_REJECTED":
		return "Your booking was rejected"
	case "BOOKING_CANCELLED":
		return "A booking was cancelled"
	case "BOOKING_COMPLETED":
		return "Your booking was completed"
	default:
		return fmt.Sprintf("Event %s on %s %s", msg.EventType, msg.AggregateType, msg.AggregateID)
	}
}
