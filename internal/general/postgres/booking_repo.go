package postgres

import (
	"context"
	"errors"
	"fmt"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/ports"

	"github.com/jackc/pgx/v5"
)

// BookingRepo persists bookings using pgx and plain SQL.
type BookingRepo struct{}

// NewBookingRepo constructs a new BookingRepo.
func NewBookingRepo() ports.BookingRepository {
	return &BookingRepo{}
}

// Create inserts a new booking row.
func (repo *BookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (
			ride_id, passenger_id, driver_id,
			seats, total_price, currency,
			status, booked_at, confirmed_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`,
		b.RideID, b.PassengerID, b.DriverID,
		b.Seats, b.TotalPrice.Amount, b.TotalPrice.Currency,
		b.Status.String(), b.BookedAt, b.ConfirmedAt, b.Version,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

// GetByID fetches a booking by primary key (uuid).
func (repo *BookingRepo) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out booking.Booking
	var status string

	err = tx.QueryRow(ctx, `
		SELECT
			id, created_at, updated_at,
			ride_id, passenger_id, driver_id,
			seats, total_price, currency,
			status, booked_at, confirmed_at, cancelled_at, completed_at,
			cancellation_reason, version
		FROM bookings
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt,
		&out.RideID, &out.PassengerID, &out.DriverID,
		&out.Seats, &out.TotalPrice.Amount, &out.TotalPrice.Currency,
		&status, &out.BookedAt, &out.ConfirmedAt, &out.CancelledAt, &out.CompletedAt,
		&out.CancellationReason, &out.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select booking: %w", err)
	}
	out.Status = booking.Status(status)

	return &out, nil
}

// Save writes the mutated aggregate back with an optimistic-concurrency
// check; see RideRepo.Save for the version contract.
func (repo *BookingRepo) Save(ctx context.Context, b *booking.Booking) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    confirmed_at = $2,
		    cancelled_at = $3,
		    completed_at = $4,
		    cancellation_reason = $5,
		    updated_at = now(),
		    version = $6
		WHERE id = $7
		  AND version = $8
	`,
		b.Status.String(),
		b.ConfirmedAt,
		b.CancelledAt,
		b.CompletedAt,
		b.CancellationReason,
		b.Version,
		b.ID,
		b.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	return nil
}
