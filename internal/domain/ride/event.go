package ride

import (
	"encoding/json"
	"errors"
	"maps"
	"time"
)

// Event is a domain event raised by a ride mutation. Mutating methods
// return their events explicitly; the aggregate keeps no hidden buffer.
type Event struct {
	RideID     string
	Type       EventType
	Data       map[string]any
	OccurredAt time.Time
}

var (
	ErrRideIDRequired = errors.New("ride id is required")
	ErrEventDataNil   = errors.New("event data must not be nil")
)

// newEvent constructs an event stamped with the current time.
func newEvent(rideID string, eventType EventType, data map[string]any) Event {
	return Event{
		RideID:     rideID,
		Type:       eventType,
		Data:       cloneMap(data),
		OccurredAt: time.Now().UTC(),
	}
}

// Validate performs basic invariants checks mirroring DB constraints.
func (event Event) Validate() error {
	if event.RideID == "" {
		return ErrRideIDRequired
	}
	if !event.Type.Valid() {
		return ErrInvalidEventType
	}
	if event.Data == nil {
		return ErrEventDataNil
	}
	return nil
}

// DataJSON returns event.Data encoded as JSON.
func (event Event) DataJSON() ([]byte, error) {
	if event.Data == nil {
		return nil, ErrEventDataNil
	}
	return json.Marshal(event.Data)
}

// cloneMap makes a shallow defensive copy of a map[string]any.
func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return make(map[string]any)
	}

	dst := make(map[string]any, len(src))
	maps.Copy(dst, src)
	return dst
}
