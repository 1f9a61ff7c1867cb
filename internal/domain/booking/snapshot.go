package booking

import (
	"time"

	"ride-booking/internal/domain/money"
)

// RideSnapshot is the booking side's view of a ride, fetched over the seat
// reservation RPC at booking time. The booking store never joins against the
// ride store; everything a booking needs is denormalized from this snapshot.
type RideSnapshot struct {
	RideID         string
	DriverID       string
	Status         string
	DepartureTime  time.Time
	TotalSeats     int
	AvailableSeats int
	PricePerSeat   money.Money
	AutoConfirm    bool
}

// Scheduled reports whether the snapshot allows new bookings.
func (snap RideSnapshot) Scheduled() bool {
	return snap.Status == "SCHEDULED"
}
