package booking

import (
	"errors"
	"strings"
)

// EventType names the domain events a booking can raise.
type EventType string

const (
	EventBookingCreated   EventType = "BOOKING_CREATED"
	EventBookingConfirmed EventType = "BOOKING_CONFIRMED"
	EventBookingRejected  EventType = "BOOKING_REJECTED"
	EventBookingCancelled EventType = "BOOKING_CANCELLED"
	EventBookingCompleted EventType = "BOOKING_COMPLETED"
)

var ErrInvalidEventType = errors.New("invalid booking event type")

// ParseEventType normalizes (uppercases+trims) and validates an event type string.
func ParseEventType(input string) (EventType, error) {
	eventType := EventType(strings.ToUpper(strings.TrimSpace(input)))
	if eventType.Valid() {
		return eventType, nil
	}
	return "", ErrInvalidEventType
}

// Valid reports whether eventType is one of the allowed event type constants.
func (eventType EventType) Valid() bool {
	switch eventType {
	case EventBookingCreated,
		EventBookingConfirmed,
		EventBookingRejected,
		EventBookingCancelled,
		EventBookingCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the EventType.
func (eventType EventType) String() string {
	return string(eventType)
}
