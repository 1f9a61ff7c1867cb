package ports

import (
	"context"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/user"
)

// RideClient is the booking side of the seat reservation RPC. All calls are
// synchronous; callers bound them with a context deadline.
type RideClient interface {
	GetRideInfo(ctx context.Context, rideID string) (booking.RideSnapshot, error)
	ReserveSeats(ctx context.Context, rideID string, seats int) error
	ReleaseSeats(ctx context.Context, rideID string, seats int) error
}

// UserClient is the identity validation RPC.
type UserClient interface {
	ValidateUser(ctx context.Context, userID string) (user.Validation, error)
}
