package ports

import (
	"context"
	"time"

	"ride-booking/internal/domain/ride"
)

// ----- Ride service -----

type CreateRideInput struct {
	DriverID        string
	OriginName      string
	OriginLat       float64
	OriginLng       float64
	DestinationName string
	DestinationLat  float64
	DestinationLng  float64
	DepartureTime   time.Time
	TotalSeats      int
	PricePerSeat    int64
	Currency        string
	AutoConfirm     bool
}

type CreateRideResult struct {
	RideID         string
	Status         string
	AvailableSeats int
	CreatedAt      time.Time
}

// RideService owns the ride lifecycle and the seat inventory.
type RideService interface {
	CreateRide(ctx context.Context, in CreateRideInput) (CreateRideResult, error)
	StartRide(ctx context.Context, rideID, driverID string) error
	CompleteRide(ctx context.Context, rideID, driverID string) error
	CancelRide(ctx context.Context, rideID, driverID, reason string) error

	// Internal seat-reservation RPC surface, called by the booking service.
	GetRide(ctx context.Context, rideID string) (*ride.Ride, error)
	ReserveSeats(ctx context.Context, rideID string, seats int) error
	ReleaseSeats(ctx context.Context, rideID string, seats int) error
}

// ----- Booking service -----

type CreateBookingInput struct {
	RideID      string
	PassengerID string
	Seats       int
}

type CreateBookingResult struct {
	BookingID  string
	Status     string
	Seats      int
	TotalPrice int64
	Currency   string
	BookedAt   time.Time
}

// BookingService owns the booking lifecycle and the reservation saga.
type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (CreateBookingResult, error)
	ConfirmBooking(ctx context.Context, bookingID, driverID string) error
	RejectBooking(ctx context.Context, bookingID, driverID, reason string) error
	CancelBooking(ctx context.Context, bookingID, actorID, reason string) error
	CompleteBooking(ctx context.Context, bookingID, driverID string) error
}
