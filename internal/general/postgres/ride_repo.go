package postgres

import (
	"context"
	"errors"
	"fmt"

	"ride-booking/internal/domain/ride"
	"ride-booking/internal/ports"

	"github.com/jackc/pgx/v5"
)

// RideRepo persists rides using pgx and plain SQL.
type RideRepo struct{}

// NewRideRepo constructs a new RideRepo.
func NewRideRepo() ports.RideRepository {
	return &RideRepo{}
}

// Create inserts a new ride row.
func (repo *RideRepo) Create(ctx context.Context, r *ride.Ride) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rides (
			driver_id,
			origin_name, origin_lat, origin_lng,
			destination_name, destination_lat, destination_lng,
			departure_time, total_seats, available_seats,
			price_per_seat, currency, auto_confirm,
			status, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`,
		r.DriverID,
		r.Origin.Name, r.Origin.Latitude, r.Origin.Longitude,
		r.Destination.Name, r.Destination.Latitude, r.Destination.Longitude,
		r.DepartureTime, r.TotalSeats, r.AvailableSeats,
		r.PricePerSeat.Amount, r.PricePerSeat.Currency, r.AutoConfirm,
		r.Status.String(), r.Version,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}

	return nil
}

// GetByID fetches a ride by primary key (uuid).
func (repo *RideRepo) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out ride.Ride
	var status string

	err = tx.QueryRow(ctx, `
		SELECT
			id, created_at, updated_at, driver_id,
			origin_name, origin_lat, origin_lng,
			destination_name, destination_lat, destination_lng,
			departure_time, total_seats, available_seats,
			price_per_seat, currency, auto_confirm,
			status, started_at, completed_at, cancelled_at,
			cancellation_reason, version
		FROM rides
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.DriverID,
		&out.Origin.Name, &out.Origin.Latitude, &out.Origin.Longitude,
		&out.Destination.Name, &out.Destination.Latitude, &out.Destination.Longitude,
		&out.DepartureTime, &out.TotalSeats, &out.AvailableSeats,
		&out.PricePerSeat.Amount, &out.PricePerSeat.Currency, &out.AutoConfirm,
		&status, &out.StartedAt, &out.CompletedAt, &out.CancelledAt,
		&out.CancellationReason, &out.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select ride: %w", err)
	}
	out.Status = ride.Status(status)

	return &out, nil
}

// Save writes the mutated aggregate back with an optimistic-concurrency
// check. Every mutating command bumps the version exactly once, so the row
// must still be at version-1; otherwise a concurrent writer won and the
// caller retries from a fresh read.
func (repo *RideRepo) Save(ctx context.Context, r *ride.Ride) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET available_seats = $1,
		    status = $2,
		    started_at = $3,
		    completed_at = $4,
		    cancelled_at = $5,
		    cancellation_reason = $6,
		    updated_at = now(),
		    version = $7
		WHERE id = $8
		  AND version = $9
	`,
		r.AvailableSeats,
		r.Status.String(),
		r.StartedAt,
		r.CompletedAt,
		r.CancelledAt,
		r.CancellationReason,
		r.Version,
		r.ID,
		r.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update ride: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	return nil
}
