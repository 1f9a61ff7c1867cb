package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/outbox"
	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/metrics"
	"ride-booking/internal/general/postgres"
)

// appendEvents writes one outbox row per domain event inside the ambient
// transaction. bookingID is passed explicitly because events raised by New
// predate the DB-assigned id.
func (service *bookingService) appendEvents(txCtx context.Context, bookingID string, events []booking.Event) error {
	for _, ev := range events {
		payload, err := json.Marshal(contracts.EventMessage{
			AggregateType: contracts.AggregateBooking,
			AggregateID:   bookingID,
			EventType:     ev.Type.String(),
			OccurredAt:    ev.OccurredAt,
			Data:          ev.Data,
		})
		if err != nil {
			return err
		}

		msg, err := outbox.NewMessage(contracts.AggregateBooking, bookingID, ev.Type.String(), payload)
		if err != nil {
			return err
		}

		if err := service.outboxRepo.Append(txCtx, msg); err != nil {
			return err
		}
	}
	return nil
}

// mutate loads the booking, applies fn, saves it, and appends the raised
// events, all in one transaction, retrying from a fresh read on version
// conflicts.
func (service *bookingService) mutate(ctx context.Context, bookingID string, fn func(b *booking.Booking) ([]booking.Event, error)) error {
	var lastErr error

	for attempt := 0; attempt < conflictRetries; attempt++ {
		err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
			b, err := service.bookingRepo.GetByID(txCtx, bookingID)
			if err != nil {
				return err
			}

			events, err := fn(b)
			if err != nil {
				return err
			}

			if err := service.bookingRepo.Save(txCtx, b); err != nil {
				return err
			}

			return service.appendEvents(txCtx, bookingID, events)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, postgres.ErrVersionConflict) {
			return err
		}

		lastErr = err
		service.logger.Debug(ctx, "booking_version_conflict", "Concurrent update detected, retrying from fresh read", map[string]any{
			"booking_id": bookingID,
			"attempt":    attempt + 1,
		})
	}

	return lastErr
}

// releaseSeatsWithRetry is the saga compensator: it gives reserved seats back
// to the ride service with bounded exponential backoff. When the budget runs
// out the discrepancy is logged for reconciliation; the seats stay blocked
// until an operator intervenes.
func (service *bookingService) releaseSeatsWithRetry(ctx context.Context, rideID string, seats int) {
	// detach from the request context so a client timeout cannot abort compensation
	ctx = context.WithoutCancel(ctx)

	backoff := service.compensationBackoff
	var lastErr error

	for attempt := 1; attempt <= service.compensationAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, service.rpcTimeout)
		lastErr = service.rideClient.ReleaseSeats(callCtx, rideID, seats)
		cancel()

		if lastErr == nil {
			service.logger.Info(ctx, "seats_release_compensated", "Released seats after failed booking", map[string]any{
				"ride_id": rideID,
				"seats":   seats,
				"attempt": attempt,
			})
			return
		}

		service.logger.Error(ctx, "seats_release_retry", "Failed to release seats, retrying", lastErr, map[string]any{
			"ride_id": rideID,
			"seats":   seats,
			"attempt": attempt,
		})

		if attempt < service.compensationAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	metrics.CompensationFailuresTotal.Inc()
	service.logger.Error(ctx, "seats_release_exhausted", "Could not release seats; manual reconciliation required", lastErr, map[string]any{
		"ride_id": rideID,
		"seats":   seats,
	})
}

// asFault maps storage and domain errors onto the wire fault taxonomy.
// Errors already carrying a kind (notably those from the ride client) pass
// through unchanged.
func asFault(err error) error {
	var fe *fault.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fe):
		return err
	case errors.Is(err, postgres.ErrNotFound):
		return fault.NotFound("booking not found", err)
	case errors.Is(err, postgres.ErrVersionConflict):
		return fault.Conflict("booking was modified concurrently", err)
	case errors.Is(err, booking.ErrPassengerIsDriver),
		errors.Is(err, booking.ErrSeatCountInvalid),
		errors.Is(err, booking.ErrPassengerRequired),
		errors.Is(err, booking.ErrRideRequired),
		errors.Is(err, booking.ErrNotConfirmable),
		errors.Is(err, booking.ErrNotRejectable),
		errors.Is(err, booking.ErrNotCancellable),
		errors.Is(err, booking.ErrNotCompletable):
		return fault.Rule(err.Error(), err)
	default:
		return fault.Internal("booking operation failed", err)
	}
}
