package ride

import (
	"errors"
	"strings"
)

// EventType names the domain events a ride can raise.
type EventType string

const (
	EventRideCreated   EventType = "RIDE_CREATED"
	EventSeatsReserved EventType = "SEATS_RESERVED"
	EventSeatsReleased EventType = "SEATS_RELEASED"
	EventRideStarted   EventType = "RIDE_STARTED"
	EventRideCompleted EventType = "RIDE_COMPLETED"
	EventRideCancelled EventType = "RIDE_CANCELLED"
)

var ErrInvalidEventType = errors.New("invalid ride event type")

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
	case EventRideCreated,
		EventSeatsReserved,
		EventSeatsReleased,
		EventRideStarted,
		EventRideCompleted,
		EventRideCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the EventType.
func (eventType EventType) String() string {
	return string(eventType)
}
