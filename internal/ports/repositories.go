package ports

import (
	"context"
	"time"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/outbox"
	"ride-booking/internal/domain/ride"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RideRepository defines the methods for managing ride data. Save performs a
// version-checked update and fails with a conflict when the stored version
// no longer matches the one the aggregate was loaded with.
type RideRepository interface {
	Create(ctx context.Context, r *ride.Ride) error
	GetByID(ctx context.Context, id string) (*ride.Ride, error)
	Save(ctx context.Context, r *ride.Ride) error
}

// BookingRepository defines the methods for managing booking data.
type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	Save(ctx context.Context, b *booking.Booking) error
}

// OutboxRepository manages the transactional outbox. Append must run inside a
// UnitOfWork transaction; the claim/mark methods are used by the background
// publisher and run on their own connections.
type OutboxRepository interface {
	Append(ctx context.Context, msg *outbox.Message) error
	ClaimBatch(ctx context.Context, limit int, claimFor time.Duration, maxRetries int) ([]*outbox.Message, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	CountExhausted(ctx context.Context, maxRetries int) (int, error)
}
