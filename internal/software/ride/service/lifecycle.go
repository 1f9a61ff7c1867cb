package service

import (
	"context"

	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/ride"
)

// StartRide transitions a ride to IN_PROGRESS. Only the owning driver may
// start it, and only once departure time has passed.
func (service *rideService) StartRide(ctx context.Context, rideID, driverID string) error {
	ctx = service.logger.WithRideID(ctx, rideID)

	err := service.mutate(ctx, rideID, func(r *ride.Ride) ([]ride.Event, error) {
		if r.DriverID != driverID {
			return nil, fault.Rule("only the ride's driver may start it", nil)
		}
		return r.Start()
	})
	if err != nil {
		service.logger.Error(ctx, "ride_start_failed", "Failed to start ride", err, nil)
		return asFault(err)
	}

	service.logger.Info(ctx, "ride_started", "Ride started", nil)
	return nil
}

// CompleteRide transitions a ride to COMPLETED.
func (service *rideService) CompleteRide(ctx context.Context, rideID, driverID string) error {
	ctx = service.logger.WithRideID(ctx, rideID)

	err := service.mutate(ctx, rideID, func(r *ride.Ride) ([]ride.Event, error) {
		if r.DriverID != driverID {
			return nil, fault.Rule("only the ride's driver may complete it", nil)
		}
		return r.Complete()
	})
	if err != nil {
		service.logger.Error(ctx, "ride_complete_failed", "Failed to complete ride", err, nil)
		return asFault(err)
	}

	service.logger.Info(ctx, "ride_completed", "Ride completed", nil)
	return nil
}

// CancelRide transitions a ride to CANCELLED. Downstream consumers react to
// the RIDE_CANCELLED event; open bookings are resolved there.
func (service *rideService) CancelRide(ctx context.Context, rideID, driverID, reason string) error {
	ctx = service.logger.WithRideID(ctx, rideID)

	err := service.mutate(ctx, rideID, func(r *ride.Ride) ([]ride.Event, error) {
		if r.DriverID != driverID {
			return nil, fault.Rule("only the ride's driver may cancel it", nil)
		}
		return r.Cancel(reason)
	})
	if err != nil {
		service.logger.Error(ctx, "ride_cancel_failed", "Failed to cancel ride", err, nil)
		return asFault(err)
	}

	service.logger.Info(ctx, "ride_cancelled", "Ride cancelled", map[string]any{
		"reason": reason,
	})
	return nil
}
