package service

import (
	"context"
	"fmt"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/user"
	"ride-booking/internal/general/metrics"
	"ride-booking/internal/ports"
)

// CreateBooking runs the reservation saga:
//
//  1. validate the passenger against the user service
//  2. fetch the ride snapshot and check booking rules locally
//  3. reserve seats on the ride service (the remote, contended step)
//  4. persist the booking and its outbox events in one local transaction
//
// When step 4 fails after step 3 succeeded, the reserved seats are given
// back via the compensating release call.
func (service *bookingService) CreateBooking(ctx context.Context, in ports.CreateBookingInput) (ports.CreateBookingResult, error) {
	ctx = service.logger.WithRideID(ctx, in.RideID)

	// 1. the passenger must exist and be allowed to book
	validation, err := service.validateUser(ctx, in.PassengerID)
	if err != nil {
		return ports.CreateBookingResult{}, err
	}
	if !validation.Exists {
		return ports.CreateBookingResult{}, fault.NotFound("passenger does not exist", nil)
	}
	if !validation.Valid {
		return ports.CreateBookingResult{}, fault.Rule("passenger is not allowed to book rides", nil)
	}

	// 2. fetch the ride and run the cheap checks before touching its inventory
	callCtx, cancel := context.WithTimeout(ctx, service.rpcTimeout)
	snap, err := service.rideClient.GetRideInfo(callCtx, in.RideID)
	cancel()
	if err != nil {
		service.logger.Error(ctx, "ride_snapshot_failed", "Failed to fetch ride snapshot", err, nil)
		return ports.CreateBookingResult{}, asFault(err)
	}

	if !snap.Scheduled() {
		return ports.CreateBookingResult{}, fault.Rule("ride is not open for bookings", nil)
	}

	b, events, err := booking.New(snap, in.PassengerID, in.Seats)
	if err != nil {
		return ports.CreateBookingResult{}, asFault(err)
	}

	// 3. reserve the seats remotely; the ride side owns the inventory and is
	// the single arbiter of capacity
	callCtx, cancel = context.WithTimeout(ctx, service.rpcTimeout)
	err = service.rideClient.ReserveSeats(callCtx, in.RideID, in.Seats)
	cancel()
	if err != nil {
		if fault.IsKind(err, fault.KindCapacityConflict) {
			metrics.SeatReservationConflictsTotal.Inc()
		}
		service.logger.Error(ctx, "seats_reserve_failed", "Ride service rejected seat reservation", err, map[string]any{
			"seats": in.Seats,
		})
		return ports.CreateBookingResult{}, asFault(err)
	}

	// 4. persist the booking and its events atomically
	err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := service.bookingRepo.Create(txCtx, b); err != nil {
			return err
		}

		// the creation events were raised before the DB assigned the id
		for i := range events {
			events[i].BookingID = b.ID
		}

		return service.appendEvents(txCtx, b.ID, events)
	})
	if err != nil {
		service.logger.Error(ctx, "booking_create_failed", "Failed to persist booking, compensating reservation", err, map[string]any{
			"passenger_id": in.PassengerID,
			"seats":        in.Seats,
		})

		// the seats are reserved but the booking is not recorded; give them back
		service.releaseSeatsWithRetry(ctx, in.RideID, in.Seats)

		return ports.CreateBookingResult{}, asFault(err)
	}

	metrics.BookingsCreatedTotal.Inc()
	service.logger.Info(service.logger.WithBookingID(ctx, b.ID), "booking_created", fmt.Sprintf("Booking %s created", b.ID), map[string]any{
		"passenger_id": b.PassengerID,
		"seats":        b.Seats,
		"status":       b.Status.String(),
	})

	return ports.CreateBookingResult{
		BookingID:  b.ID,
		Status:     b.Status.String(),
		Seats:      b.Seats,
		TotalPrice: b.TotalPrice.Amount,
		Currency:   b.TotalPrice.Currency,
		BookedAt:   b.BookedAt,
	}, nil
}

// validateUser asks the user service about the passenger.
func (service *bookingService) validateUser(ctx context.Context, passengerID string) (user.Validation, error) {
	callCtx, cancel := context.WithTimeout(ctx, service.rpcTimeout)
	defer cancel()

	v, err := service.userClient.ValidateUser(callCtx, passengerID)
	if err != nil {
		service.logger.Error(ctx, "user_validation_failed", "Failed to validate passenger", err, map[string]any{
			"passenger_id": passengerID,
		})
		return user.Validation{}, asFault(err)
	}

	return v, nil
}
