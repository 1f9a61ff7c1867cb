package ride

import (
	"errors"
	"strings"
	"time"

	"ride-booking/internal/domain/geo"
	"ride-booking/internal/domain/money"
)

// Ride is the domain entity corresponding to the `rides` table. It owns the
// seat inventory: 0 <= AvailableSeats <= TotalSeats holds at all times, and
// every change goes through a state-machine method below.
type Ride struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Actors
	DriverID string

	// Route & schedule
	Origin        geo.Location
	Destination   geo.Location
	DepartureTime time.Time

	// Inventory & pricing
	TotalSeats     int
	AvailableSeats int
	PricePerSeat   money.Money
	AutoConfirm    bool

	// Core state
	Status Status

	// Lifecycle timestamps
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	// Additional info
	CancellationReason *string

	// Optimistic concurrency; the persistence layer rejects stale saves.
	Version int64
}

var (
	ErrDriverRequired      = errors.New("driver id is required")
	ErrSeatCountInvalid    = errors.New("seat count must be positive")
	ErrDepartureRequired   = errors.New("departure time is required")
	ErrDepartureInPast     = errors.New("departure time must be in the future")
	ErrDepartureNotReached = errors.New("ride cannot start before its departure time")
	ErrNotScheduled        = errors.New("ride is not open for seat reservations")
	ErrNotEnoughSeats      = errors.New("not enough available seats")
	ErrInvalidStatusChange = errors.New("invalid ride status transition")
)

// NewRide creates a ride in SCHEDULED state with a full seat inventory and
// returns the RIDE_CREATED event alongside it.
func NewRide(driverID string, origin, destination geo.Location, departure time.Time, totalSeats int, pricePerSeat money.Money, autoConfirm bool) (*Ride, []Event, error) {
	if driverID = strings.TrimSpace(driverID); driverID == "" {
		return nil, nil, ErrDriverRequired
	}
	if err := origin.Validate(); err != nil {
		return nil, nil, err
	}
	if err := destination.Validate(); err != nil {
		return nil, nil, err
	}
	if departure.IsZero() {
		return nil, nil, ErrDepartureRequired
	}
	now := time.Now().UTC()
	if !departure.After(now) {
		return nil, nil, ErrDepartureInPast
	}
	if totalSeats <= 0 {
		return nil, nil, ErrSeatCountInvalid
	}
	if _, err := money.New(pricePerSeat.Amount, pricePerSeat.Currency); err != nil {
		return nil, nil, err
	}

	ride := &Ride{
		CreatedAt:      now,
		UpdatedAt:      now,
		DriverID:       driverID,
		Origin:         origin,
		Destination:    destination,
		DepartureTime:  departure.UTC(),
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		PricePerSeat:   pricePerSeat,
		AutoConfirm:    autoConfirm,
		Status:         StatusScheduled,
		Version:        1,
	}

	events := []Event{newEvent(ride.ID, EventRideCreated, map[string]any{
		"driver_id":      ride.DriverID,
		"origin":         ride.Origin.Name,
		"destination":    ride.Destination.Name,
		"departure_time": ride.DepartureTime.Format(time.RFC3339),
		"total_seats":    ride.TotalSeats,
		"price_per_seat": ride.PricePerSeat.Amount,
		"currency":       ride.PricePerSeat.Currency,
		"auto_confirm":   ride.AutoConfirm,
	})}

	return ride, events, nil
}

// ReserveSeats takes n seats off the inventory. It fails when the ride is no
// longer SCHEDULED or when fewer than n seats remain, leaving state unchanged.
func (ride *Ride) ReserveSeats(n int) ([]Event, error) {
	if n <= 0 {
		return nil, ErrSeatCountInvalid
	}
	if ride.Status != StatusScheduled {
		return nil, ErrNotScheduled
	}
	if n > ride.AvailableSeats {
		return nil, ErrNotEnoughSeats
	}

	ride.AvailableSeats -= n
	ride.bump()

	return []Event{newEvent(ride.ID, EventSeatsReserved, map[string]any{
		"seats":           n,
		"available_seats": ride.AvailableSeats,
	})}, nil
}

// ReleaseSeats returns n seats to the inventory, capped at TotalSeats.
// It never fails: the release path is the compensator of the reservation
// saga and must always succeed, whatever state the ride is in.
func (ride *Ride) ReleaseSeats(n int) []Event {
	if n <= 0 {
		return nil
	}

	released := n
	if ride.AvailableSeats+n > ride.TotalSeats {
		released = ride.TotalSeats - ride.AvailableSeats
	}
	ride.AvailableSeats += released
	ride.bump()

	return []Event{newEvent(ride.ID, EventSeatsReleased, map[string]any{
		"seats":           released,
		"available_seats": ride.AvailableSeats,
	})}
}

// Start transitions SCHEDULED -> IN_PROGRESS once departure time has passed.
func (ride *Ride) Start() ([]Event, error) {
	if ride.Status != StatusScheduled {
		return nil, ErrInvalidStatusChange
	}
	now := time.Now().UTC()
	if now.Before(ride.DepartureTime) {
		return nil, ErrDepartureNotReached
	}

	ride.StartedAt = &now
	ride.setStatus(StatusInProgress)

	return []Event{newEvent(ride.ID, EventRideStarted, map[string]any{
		"started_at": now.Format(time.RFC3339),
	})}, nil
}

// Complete transitions IN_PROGRESS -> COMPLETED.
func (ride *Ride) Complete() ([]Event, error) {
	if ride.Status != StatusInProgress {
		return nil, ErrInvalidStatusChange
	}

	now := time.Now().UTC()
	ride.CompletedAt = &now
	ride.setStatus(StatusCompleted)

	return []Event{newEvent(ride.ID, EventRideCompleted, map[string]any{
		"completed_at": now.Format(time.RFC3339),
	})}, nil
}

// Cancel transitions to CANCELLED (if not terminal already).
func (ride *Ride) Cancel(reason string) ([]Event, error) {
	if ride.Status.Terminal() {
		return nil, ErrInvalidStatusChange
	}

	now := time.Now().UTC()
	ride.CancelledAt = &now
	if rs := strings.TrimSpace(reason); rs != "" {
		ride.CancellationReason = &rs
	}
	ride.setStatus(StatusCancelled)

	return []Event{newEvent(ride.ID, EventRideCancelled, map[string]any{
		"reason":       reason,
		"cancelled_at": now.Format(time.RFC3339),
	})}, nil
}

// ----- internal helpers -----

func (ride *Ride) setStatus(status Status) {
	ride.Status = status
	ride.bump()
}

// bump advances the optimistic-concurrency version and touches UpdatedAt.
func (ride *Ride) bump() {
	ride.Version++
	ride.UpdatedAt = time.Now().UTC()
}
