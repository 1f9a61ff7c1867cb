package outbox

import (
	"context"
	"sort"
	"time"

	domoutbox "ride-booking/internal/domain/outbox"
	"ride-booking/internal/general/logger"
	"ride-booking/internal/general/metrics"
	"ride-booking/internal/ports"
)

// Broker is the slice of the message client the publisher needs.
type Broker interface {
	Ready() bool
	PublishEvent(exchange, routingKey, messageID, eventType string, body []byte) error
}

// Publisher drains the outbox in the background. Each cycle claims a batch of
// unprocessed messages, publishes them in creation order, and stamps each one
// processed or failed independently. Messages that exhaust their retry budget
// stay in the table for operator reconciliation; nothing is ever deleted.
type Publisher struct {
	service     string
	exchange    string
	routePrefix string

	repo   ports.OutboxRepository
	broker Broker
	logger *logger.Logger

	interval   time.Duration
	batchSize  int
	maxRetries int
	claimTTL   time.Duration
}

// Options bundles the tuning knobs taken from config.
type Options struct {
	Service     string
	Exchange    string
	RoutePrefix string
	Interval    time.Duration
	BatchSize   int
	MaxRetries  int
	ClaimTTL    time.Duration
}

// NewPublisher constructs a publisher for one service's outbox stream.
func NewPublisher(repo ports.OutboxRepository, broker Broker, log *logger.Logger, opts Options) *Publisher {
	return &Publisher{
		service:     opts.Service,
		exchange:    opts.Exchange,
		routePrefix: opts.RoutePrefix,
		repo:        repo,
		broker:      broker,
		logger:      log,
		interval:    opts.Interval,
		batchSize:   opts.BatchSize,
		maxRetries:  opts.MaxRetries,
		claimTTL:    opts.ClaimTTL,
	}
}

// Run polls until ctx is cancelled. Call it in its own goroutine.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info(ctx, "outbox_publisher_started", "Outbox publisher started", map[string]any{
		"interval_ms": p.interval.Milliseconds(),
		"batch_size":  p.batchSize,
		"max_retries": p.maxRetries,
	})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(context.WithoutCancel(ctx), "outbox_publisher_stopped", "Outbox publisher stopped", nil)
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one claim-publish-mark pass.
func (p *Publisher) cycle(ctx context.Context) {
	// a broker outage leaves the pending rows untouched; the next cycle
	// after reconnect picks them up again
	if !p.broker.Ready() {
		p.logger.Debug(ctx, "outbox_broker_not_ready", "Broker not ready, skipping outbox cycle", nil)
		return
	}

	batch, err := p.repo.ClaimBatch(ctx, p.batchSize, p.claimTTL, p.maxRetries)
	if err != nil {
		p.logger.Error(ctx, "outbox_claim_failed", "Failed to claim outbox batch", err, nil)
		return
	}

	// events of one service must reach the broker in creation order; the
	// publisher owns that invariant, not the claim query
	sort.Slice(batch, func(i, j int) bool {
		return batch[i].CreatedAt.Before(batch[j].CreatedAt)
	})

	for _, msg := range batch {
		if err := p.publishOne(ctx, msg); err != nil {
			metrics.OutboxPublishFailuresTotal.WithLabelValues(p.service).Inc()
			p.logger.Error(ctx, "outbox_publish_failed", "Failed to publish outbox message", err, map[string]any{
				"message_id":  msg.ID,
				"event_type":  msg.EventType,
				"retry_count": msg.RetryCount,
			})

			if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				p.logger.Error(ctx, "outbox_mark_failed_error", "Failed to record outbox failure", markErr, map[string]any{
					"message_id": msg.ID,
				})
			}
			// one bad message must not block the rest of the batch
			continue
		}

		metrics.OutboxPublishedTotal.WithLabelValues(p.service).Inc()

		if err := p.repo.MarkProcessed(ctx, msg.ID, time.Now().UTC()); err != nil {
			// the message was published but not stamped; the claim expires
			// and it will be republished, which consumers deduplicate by
			// message id
			p.logger.Error(ctx, "outbox_mark_processed_error", "Failed to stamp outbox message processed", err, map[string]any{
				"message_id": msg.ID,
			})
		}
	}

	p.reportExhausted(ctx)
}

// publishOne delivers a single message to the broker.
func (p *Publisher) publishOne(_ context.Context, msg *domoutbox.Message) error {
	routingKey := p.routePrefix + msg.EventType
	return p.broker.PublishEvent(p.exchange, routingKey, msg.ID, msg.EventType, msg.Payload)
}

// reportExhausted surfaces messages past their retry budget.
func (p *Publisher) reportExhausted(ctx context.Context) {
	n, err := p.repo.CountExhausted(ctx, p.maxRetries)
	if err != nil {
		p.logger.Error(ctx, "outbox_exhausted_count_failed", "Failed to count exhausted outbox messages", err, nil)
		return
	}

	metrics.OutboxExhausted.WithLabelValues(p.service).Set(float64(n))

	if n > 0 {
		p.logger.Error(ctx, "outbox_messages_exhausted", "Outbox messages exhausted their retry budget and need attention", nil, map[string]any{
			"count": n,
		})
	}
}
