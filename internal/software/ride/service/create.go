package service

import (
	"context"
	"fmt"
	"time"

	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/geo"
	"ride-booking/internal/domain/money"
	"ride-booking/internal/domain/ride"
	"ride-booking/internal/ports"
)

// CreateRide publishes a new ride offer in SCHEDULED state with a full seat
// inventory. The ride row and its RIDE_CREATED outbox row commit atomically.
func (service *rideService) CreateRide(ctx context.Context, in ports.CreateRideInput) (ports.CreateRideResult, error) {
	correlationID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, correlationID)

	origin, err := geo.NewLocation(in.OriginName, in.OriginLat, in.OriginLng)
	if err != nil {
		return ports.CreateRideResult{}, fault.Rule(err.Error(), err)
	}

	destination, err := geo.NewLocation(in.DestinationName, in.DestinationLat, in.DestinationLng)
	if err != nil {
		return ports.CreateRideResult{}, fault.Rule(err.Error(), err)
	}

	price, err := money.New(in.PricePerSeat, in.Currency)
	if err != nil {
		return ports.CreateRideResult{}, fault.Rule(err.Error(), err)
	}

	r, events, err := ride.NewRide(in.DriverID, origin, destination, in.DepartureTime, in.TotalSeats, price, in.AutoConfirm)
	if err != nil {
		return ports.CreateRideResult{}, fault.Rule(err.Error(), err)
	}

	// persist the ride and its events in one transaction
	err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := service.rideRepo.Create(txCtx, r); err != nil {
			return err
		}

		// the creation events were raised before the DB assigned the id
		for i := range events {
			events[i].RideID = r.ID
		}

		return service.appendEvents(txCtx, r.ID, events)
	})
	if err != nil {
		service.logger.Error(ctx, "ride_create_failed", "Failed to create ride", err, map[string]any{
			"driver_id": in.DriverID,
		})
		return ports.CreateRideResult{}, asFault(err)
	}

	service.logger.Info(service.logger.WithRideID(ctx, r.ID), "ride_created", fmt.Sprintf("Ride %s created", r.ID), map[string]any{
		"driver_id":      r.DriverID,
		"total_seats":    r.TotalSeats,
		"departure_time": r.DepartureTime.Format(time.RFC3339),
	})

	return ports.CreateRideResult{
		RideID:         r.ID,
		Status:         r.Status.String(),
		AvailableSeats: r.AvailableSeats,
		CreatedAt:      r.CreatedAt,
	}, nil
}
