package service

import (
	"context"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/fault"
)

// ConfirmBooking transitions a pending booking to CONFIRMED. Only the ride's
// driver may confirm; the seats stay reserved.
func (service *bookingService) ConfirmBooking(ctx context.Context, bookingID, driverID string) error {
	ctx = service.logger.WithBookingID(ctx, bookingID)

	err := service.mutate(ctx, bookingID, func(b *booking.Booking) ([]booking.Event, error) {
		if b.DriverID != driverID {
			return nil, fault.Rule("only the ride's driver may confirm a booking", nil)
		}
		return b.Confirm()
	})
	if err != nil {
		service.logger.Error(ctx, "booking_confirm_failed", "Failed to confirm booking", err, nil)
		return asFault(err)
	}

	service.logger.Info(ctx, "booking_confirmed", "Booking confirmed", nil)
	return nil
}

// RejectBooking transitions a pending booking to REJECTED and gives the
// reserved seats back to the ride.
func (service *bookingService) RejectBooking(ctx context.Context, bookingID, driverID, reason string) error {
	ctx = service.logger.WithBookingID(ctx, bookingID)

	var rideID string
	var seats int

	err := service.mutate(ctx, bookingID, func(b *booking.Booking) ([]booking.Event, error) {
		if b.DriverID != driverID {
			return nil, fault.Rule("only the ride's driver may reject a booking", nil)
		}
		rideID = b.RideID
		seats = b.Seats
		return b.Reject(reason)
	})
	if err != nil {
		service.logger.Error(ctx, "booking_reject_failed", "Failed to reject booking", err, nil)
		return asFault(err)
	}

	// the booking is final; now return its seats to the inventory
	service.releaseSeatsWithRetry(service.logger.WithRideID(ctx, rideID), rideID, seats)

	service.logger.Info(ctx, "booking_rejected", "Booking rejected", map[string]any{
		"reason": reason,
	})
	return nil
}

// CancelBooking transitions a booking to CANCELLED. The passenger may cancel
// their own booking and the driver may cancel any booking on their ride; the
// reserved seats go back either way.
func (service *bookingService) CancelBooking(ctx context.Context, bookingID, actorID, reason string) error {
	ctx = service.logger.WithBookingID(ctx, bookingID)

	var rideID string
	var seats int

	err := service.mutate(ctx, bookingID, func(b *booking.Booking) ([]booking.Event, error) {
		byPassenger := actorID == b.PassengerID
		if !byPassenger && actorID != b.DriverID {
			return nil, fault.Rule("only the booking's passenger or the ride's driver may cancel it", nil)
		}
		rideID = b.RideID
		seats = b.Seats
		return b.Cancel(reason, byPassenger)
	})
	if err != nil {
		service.logger.Error(ctx, "booking_cancel_failed", "Failed to cancel booking", err, nil)
		return asFault(err)
	}

	service.releaseSeatsWithRetry(service.logger.WithRideID(ctx, rideID), rideID, seats)

	service.logger.Info(ctx, "booking_cancelled", "Booking cancelled", map[string]any{
		"reason": reason,
	})
	return nil
}

// CompleteBooking transitions a confirmed booking to COMPLETED after the ride
// finished. The seats were consumed, nothing is released.
func (service *bookingService) CompleteBooking(ctx context.Context, bookingID, driverID string) error {
	ctx = service.logger.WithBookingID(ctx, bookingID)

	err := service.mutate(ctx, bookingID, func(b *booking.Booking) ([]booking.Event, error) {
		if b.DriverID != driverID {
			return nil, fault.Rule("only the ride's driver may complete a booking", nil)
		}
		return b.Complete()
	})
	if err != nil {
		service.logger.Error(ctx, "booking_complete_failed", "Failed to complete booking", err, nil)
		return asFault(err)
	}

	service.logger.Info(ctx, "booking_completed", "Booking completed", nil)
	return nil
}
