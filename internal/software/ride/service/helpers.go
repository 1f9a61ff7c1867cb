package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/outbox"
	"ride-booking/internal/domain/ride"
	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/postgres"
)

// generateCorrelationID creates a simple correlation ID for tracing requests.
func generateCorrelationID() string {
	var b [3]byte // 6 hex chars
	_, _ = rand.Read(b[:])
	ts := time.Now().UTC().Format("20060102T150405")
	return "req_" + ts + "_" + hex.EncodeToString(b[:])
}

// appendEvents writes one outbox row per domain event inside the ambient
// transaction. rideID is passed explicitly because events raised by NewRide
// predate the DB-assigned id.
func (service *rideService) appendEvents(txCtx context.Context, rideID string, events []ride.Event) error {
	for _, ev := range events {
		payload, err := json.Marshal(contracts.EventMessage{
			AggregateType: contracts.AggregateRide,
			AggregateID:   rideID,
			EventType:     ev.Type.String(),
			OccurredAt:    ev.OccurredAt,
			Data:          ev.Data,
		})
		if err != nil {
			return err
		}

		msg, err := outbox.NewMessage(contracts.AggregateRide, rideID, ev.Type.String(), payload)
		if err != nil {
			return err
		}

		if err := service.outboxRepo.Append(txCtx, msg); err != nil {
			return err
		}
	}
	return nil
}

// mutate loads the ride, applies fn, saves it, and appends the raised events,
// all in one transaction. A version conflict means a concurrent writer won;
// the command is retried from a fresh read a bounded number of times.
func (service *rideService) mutate(ctx context.Context, rideID string, fn func(r *ride.Ride) ([]ride.Event, error)) error {
	var lastErr error

	for attempt := 0; attempt < conflictRetries; attempt++ {
		err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
			r, err := service.rideRepo.GetByID(txCtx, rideID)
			if err != nil {
				return err
			}

			events, err := fn(r)
			if err != nil {
				return err
			}

			if err := service.rideRepo.Save(txCtx, r); err != nil {
				return err
			}

			return service.appendEvents(txCtx, rideID, events)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, postgres.ErrVersionConflict) {
			return err
		}

		lastErr = err
		service.logger.Debug(ctx, "ride_version_conflict", "Concurrent update detected, retrying from fresh read", map[string]any{
			"ride_id": rideID,
			"attempt": attempt + 1,
		})
	}

	return lastErr
}

// asFault maps storage and domain errors onto the wire fault taxonomy.
// Errors already carrying a kind pass through unchanged.
func asFault(err error) error {
	var fe *fault.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fe):
		return err
	case errors.Is(err, postgres.ErrNotFound):
		return fault.NotFound("ride not found", err)
	case errors.Is(err, postgres.ErrVersionConflict):
		return fault.Conflict("ride was modified concurrently", err)
	case errors.Is(err, ride.ErrNotEnoughSeats):
		return fault.Capacity(err.Error(), err)
	case errors.Is(err, ride.ErrNotScheduled),
		errors.Is(err, ride.ErrInvalidStatusChange),
		errors.Is(err, ride.ErrDepartureNotReached),
		errors.Is(err, ride.ErrSeatCountInvalid),
		errors.Is(err, ride.ErrDriverRequired),
		errors.Is(err, ride.ErrDepartureRequired),
		errors.Is(err, ride.ErrDepartureInPast):
		return fault.Rule(err.Error(), err)
	default:
		return fault.Internal("ride operation failed", err)
	}
}
