package booking

import (
	"errors"
	"strings"
	"time"

	"ride-booking/internal/domain/money"
)

// Booking is the domain entity corresponding to the `bookings` table.
// Seats is fixed at creation and never mutated; lifecycle changes go through
// the state-machine methods, which return the events they raise.
type Booking struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// References (DriverID denormalized from the ride at creation)
	RideID      string
	PassengerID string
	DriverID    string

	// Immutable order lines
	Seats      int
	TotalPrice money.Money

	// Core state
	Status Status

	// Lifecycle timestamps
	BookedAt    time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time

	// Additional info
	CancellationReason *string

	// Optimistic concurrency; the persistence layer rejects stale saves.
	Version int64
}

var (
	ErrPassengerRequired = errors.New("passenger id is required")
	ErrRideRequired      = errors.New("ride id is required")
	ErrSeatCountInvalid  = errors.New("seat count must be positive")
	ErrPassengerIsDriver = errors.New("driver cannot book seats on their own ride")
	ErrNotConfirmable    = errors.New("driver already acted or booking is no longer confirmable")
	ErrNotRejectable     = errors.New("booking is no longer rejectable")
	ErrNotCancellable    = errors.New("booking is no longer cancellable")
	ErrNotCompletable    = errors.New("only a confirmed booking can be completed")
)

// New creates a booking against a ride snapshot. The booking starts PENDING,
// or jumps straight to CONFIRMED when the ride auto-confirms, in which case
// both the created and the confirmed events are returned.
func New(snap RideSnapshot, passengerID string, seats int) (*Booking, []Event, error) {
	if passengerID = strings.TrimSpace(passengerID); passengerID == "" {
		return nil, nil, ErrPassengerRequired
	}
	if strings.TrimSpace(snap.RideID) == "" {
		return nil, nil, ErrRideRequired
	}
	if seats <= 0 {
		return nil, nil, ErrSeatCountInvalid
	}
	if passengerID == snap.DriverID {
		return nil, nil, ErrPassengerIsDriver
	}

	now := time.Now().UTC()
	booking := &Booking{
		CreatedAt:   now,
		UpdatedAt:   now,
		RideID:      snap.RideID,
		PassengerID: passengerID,
		DriverID:    snap.DriverID,
		Seats:       seats,
		TotalPrice:  snap.PricePerSeat.Times(seats),
		Status:      StatusPending,
		BookedAt:    now,
		Version:     1,
	}

	events := []Event{newEvent(booking.ID, EventBookingCreated, map[string]any{
		"ride_id":      booking.RideID,
		"passenger_id": booking.PassengerID,
		"driver_id":    booking.DriverID,
		"seats":        booking.Seats,
		"total_price":  booking.TotalPrice.Amount,
		"currency":     booking.TotalPrice.Currency,
		"status":       booking.Status.String(),
	})}

	if snap.AutoConfirm {
		confirmed, err := booking.Confirm()
		if err != nil {
			return nil, nil, err
		}
		events = append(events, confirmed...)
	}

	return booking, events, nil
}

// Confirm transitions PENDING -> CONFIRMED.
func (booking *Booking) Confirm() ([]Event, error) {
	if booking.Status != StatusPending {
		return nil, ErrNotConfirmable
	}

	now := time.Now().UTC()
	booking.ConfirmedAt = &now
	booking.setStatus(StatusConfirmed)

	return []Event{newEvent(booking.ID, EventBookingConfirmed, map[string]any{
		"ride_id":      booking.RideID,
		"passenger_id": booking.PassengerID,
		"confirmed_at": now.Format(time.RFC3339),
	})}, nil
}

// Reject transitions PENDING -> REJECTED. The event carries the seat count
// the ride side has to put back into its inventory.
func (booking *Booking) Reject(reason string) ([]Event, error) {
	if booking.Status != StatusPending {
		return nil, ErrNotRejectable
	}

	now := time.Now().UTC()
	booking.CancelledAt = &now
	if rs := strings.TrimSpace(reason); rs != "" {
		booking.CancellationReason = &rs
	}
	booking.setStatus(StatusRejected)

	return []Event{newEvent(booking.ID, EventBookingRejected, map[string]any{
		"ride_id":          booking.RideID,
		"passenger_id":     booking.PassengerID,
		"seats_to_release": booking.Seats,
		"reason":           reason,
	})}, nil
}

// Cancel transitions PENDING/CONFIRMED -> CANCELLED. The event carries the
// seats to release and who cancelled.
func (booking *Booking) Cancel(reason string, byPassenger bool) ([]Event, error) {
	if booking.Status != StatusPending && booking.Status != StatusConfirmed {
		return nil, ErrNotCancellable
	}

	now := time.Now().UTC()
	booking.CancelledAt = &now
	if rs := strings.TrimSpace(reason); rs != "" {
		booking.CancellationReason = &rs
	}
	booking.setStatus(StatusCancelled)

	cancelledBy := "driver"
	if byPassenger {
		cancelledBy = "passenger"
	}

	return []Event{newEvent(booking.ID, EventBookingCancelled, map[string]any{
		"ride_id":          booking.RideID,
		"passenger_id":     booking.PassengerID,
		"seats_to_release": booking.Seats,
		"cancelled_by":     cancelledBy,
		"reason":           reason,
	})}, nil
}

// Complete transitions CONFIRMED -> COMPLETED.
func (booking *Booking) Complete() ([]Event, error) {
	if booking.Status != StatusConfirmed {
		return nil, ErrNotCompletable
	}

	now := time.Now().UTC()
	booking.CompletedAt = &now
	booking.setStatus(StatusCompleted)

	return []Event{newEvent(booking.ID, EventBookingCompleted, map[string]any{
		"ride_id":      booking.RideID,
		"passenger_id": booking.PassengerID,
		"completed_at": now.Format(time.RFC3339),
	})}, nil
}

// ----- internal helpers -----

func (booking *Booking) setStatus(status Status) {
	booking.Status = status
	booking.bump()
}

// bump advances the optimistic-concurrency version and touches UpdatedAt.
func (booking *Booking) bump() {
	booking.Version++
	booking.UpdatedAt = time.Now().UTC()
}
