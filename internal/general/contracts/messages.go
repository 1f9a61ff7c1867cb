package contracts

import "time"

// EventMessage is the broker payload written into the outbox at mutation time
// and decoded by downstream consumers. The broker message additionally
// carries the outbox row id as MessageId and the event type as Type, so
// consumers can deduplicate without parsing the body.
type EventMessage struct {
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	EventType     string         `json:"event_type"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Data          map[string]any `json:"data,omitempty"`
}

// RideSnapshot is the wire form of a ride returned by the internal
// seat-reservation RPC.
type RideSnapshot struct {
	RideID         string    `json:"ride_id"`
	DriverID       string    `json:"driver_id"`
	Status         string    `json:"status"`
	DepartureTime  time.Time `json:"departure_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	PricePerSeat   int64     `json:"price_per_seat"`
	Currency       string    `json:"currency"`
	AutoConfirm    bool      `json:"auto_confirm"`
}

// SeatChangeRequest is the body of reserve/release calls.
type SeatChangeRequest struct {
	Seats int `json:"seats"`
}

// ErrorResponse is the JSON error body all handlers write. Kind mirrors the
// fault taxonomy so callers can switch without parsing messages.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// AuthUserRecord is the identity service's wire record. The RPC client maps
// it onto the domain user; nothing outside that mapping sees this schema.
type AuthUserRecord struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	Status       string         `json:"status"`
	PasswordHash string         `json:"password_hash,omitempty"`
	Attrs        map[string]any `json:"attrs,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
