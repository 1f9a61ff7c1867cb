package postgres

import (
	"context"
	"fmt"
	"time"

	"ride-booking/internal/domain/outbox"
	"ride-booking/internal/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRepo persists outbox messages. Append runs inside the caller's
// unit-of-work transaction so the event row commits or rolls back together
// with the aggregate mutation; the claim/mark methods run on the pool since
// the publisher operates outside any business transaction.
type OutboxRepo struct {
	pool *pgxpool.Pool
}

// NewOutboxRepo constructs a new OutboxRepo bound to the given pool.
func NewOutboxRepo(pool *pgxpool.Pool) ports.OutboxRepository {
	return &OutboxRepo{pool: pool}
}

// Append inserts an unprocessed outbox row in the ambient transaction.
func (repo *OutboxRepo) Append(ctx context.Context, msg *outbox.Message) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_messages (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}

	return nil
}

// ClaimBatch selects up to limit unprocessed messages in creation order and
// stamps a short-lived claim on them. FOR UPDATE SKIP LOCKED plus the
// claimed_until check lets multiple publisher instances run concurrently
// without delivering the same message twice.
func (repo *OutboxRepo) ClaimBatch(ctx context.Context, limit int, claimFor time.Duration, maxRetries int) ([]*outbox.Message, error) {
	// RETURNING does not preserve the subquery's order, so the claimed rows
	// are re-sorted before they reach the publisher
	rows, err := repo.pool.Query(ctx, `
		WITH claimed AS (
			UPDATE outbox_messages
			SET claimed_until = now() + make_interval(secs => $1)
			WHERE id IN (
				SELECT id
				FROM outbox_messages
				WHERE processed_at IS NULL
				  AND retry_count < $2
				  AND (claimed_until IS NULL OR claimed_until < now())
				ORDER BY created_at
				LIMIT $3
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, aggregate_type, aggregate_id, event_type, payload,
			          created_at, processed_at, retry_count, last_error, claimed_until
		)
		SELECT id, aggregate_type, aggregate_id, event_type, payload,
		       created_at, processed_at, retry_count, last_error, claimed_until
		FROM claimed
		ORDER BY created_at
	`, claimFor.Seconds(), maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox batch: %w", err)
	}
	defer rows.Close()

	var batch []*outbox.Message
	for rows.Next() {
		var m outbox.Message
		err := rows.Scan(
			&m.ID, &m.AggregateType, &m.AggregateID, &m.EventType, &m.Payload,
			&m.CreatedAt, &m.ProcessedAt, &m.RetryCount, &m.LastError, &m.ClaimedUntil,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		batch = append(batch, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return batch, nil
}

// MarkProcessed stamps processed_at; a stamped message is never republished.
func (repo *OutboxRepo) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	_, err := repo.pool.Exec(ctx, `
		UPDATE outbox_messages
		SET processed_at = $1,
		    claimed_until = NULL,
		    last_error = NULL
		WHERE id = $2
		  AND processed_at IS NULL
	`, at, id)
	if err != nil {
		return fmt.Errorf("mark outbox processed: %w", err)
	}
	return nil
}

// MarkFailed increments the retry counter and records the error. The claim is
// released so another cycle (or instance) can retry.
func (repo *OutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := repo.pool.Exec(ctx, `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1,
		    last_error = $1,
		    claimed_until = NULL
		WHERE id = $2
		  AND processed_at IS NULL
	`, reason, id)
	if err != nil {
		return fmt.Errorf("mark outbox failed: %w", err)
	}
	return nil
}

// CountExhausted reports messages that used up their retry budget and now
// need operator attention. They are kept, never deleted automatically.
func (repo *OutboxRepo) CountExhausted(ctx context.Context, maxRetries int) (int, error) {
	var n int
	err := repo.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM outbox_messages
		WHERE processed_at IS NULL
		  AND retry_count >= $1
	`, maxRetries).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count exhausted outbox messages: %w", err)
	}
	return n, nil
}
