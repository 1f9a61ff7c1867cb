package service

import (
	"context"

	"ride-booking/internal/domain/ride"
)

// GetRide returns the current ride state for the internal snapshot RPC.
func (service *rideService) GetRide(ctx context.Context, rideID string) (*ride.Ride, error) {
	var out *ride.Ride

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.rideRepo.GetByID(txCtx, rideID)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, asFault(err)
	}

	return out, nil
}

// ReserveSeats atomically takes seats off the ride's inventory on behalf of
// the booking service. Capacity and state checks live in the aggregate; the
// version-checked save plus bounded retry makes concurrent reservations safe.
func (service *rideService) ReserveSeats(ctx context.Context, rideID string, seats int) error {
	ctx = service.logger.WithRideID(ctx, rideID)

	err := service.mutate(ctx, rideID, func(r *ride.Ride) ([]ride.Event, error) {
		return r.ReserveSeats(seats)
	})
	if err != nil {
		service.logger.Error(ctx, "seats_reserve_failed", "Failed to reserve seats", err, map[string]any{
			"seats": seats,
		})
		return asFault(err)
	}

	service.logger.Info(ctx, "seats_reserved", "Seats reserved", map[string]any{
		"seats": seats,
	})
	return nil
}

// ReleaseSeats returns seats to the inventory. This is the compensating side
// of the reservation saga: the aggregate accepts it in any state and caps the
// result at the total, so over-release is impossible and callers can retry
// blindly.
func (service *rideService) ReleaseSeats(ctx context.Context, rideID string, seats int) error {
	ctx = service.logger.WithRideID(ctx, rideID)

	// the aggregate treats a non-positive count as a no-op without advancing
	// the version, so saving would trip the version check for nothing
	if seats <= 0 {
		service.logger.Debug(ctx, "seats_release_noop", "Ignoring non-positive seat release", map[string]any{
			"seats": seats,
		})
		return nil
	}

	err := service.mutate(ctx, rideID, func(r *ride.Ride) ([]ride.Event, error) {
		return r.ReleaseSeats(seats), nil
	})
	if err != nil {
		service.logger.Error(ctx, "seats_release_failed", "Failed to release seats", err, map[string]any{
			"seats": seats,
		})
		return asFault(err)
	}

	service.logger.Info(ctx, "seats_released", "Seats released", map[string]any{
		"seats": seats,
	})
	return nil
}
