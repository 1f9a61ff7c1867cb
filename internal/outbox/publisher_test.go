package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	domoutbox "ride-booking/internal/domain/outbox"
	"ride-booking/internal/general/logger"
)

type fakeRepo struct {
	pending   []*domoutbox.Message
	processed []string
	failed    map[string]string
	claimErr  error
}

func (f *fakeRepo) Append(ctx context.Context, msg *domoutbox.Message) error {
	f.pending = append(f.pending, msg)
	return nil
}

func (f *fakeRepo) ClaimBatch(ctx context.Context, limit int, claimFor time.Duration, maxRetries int) ([]*domoutbox.Message, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeRepo) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	return nil
}

func (f *fakeRepo) CountExhausted(ctx context.Context, maxRetries int) (int, error) {
	return 0, nil
}

type fakeBroker struct {
	ready     bool
	failTypes map[string]bool
	published []publishedMsg
}

type publishedMsg struct {
	exchange   string
	routingKey string
	messageID  string
	eventType  string
}

func (f *fakeBroker) Ready() bool { return f.ready }

func (f *fakeBroker) PublishEvent(exchange, routingKey, messageID, eventType string, body []byte) error {
	if f.failTypes[eventType] {
		return errors.New("broker rejected message")
	}
	f.published = append(f.published, publishedMsg{exchange, routingKey, messageID, eventType})
	return nil
}

func newTestPublisher(repo *fakeRepo, broker *fakeBroker) *Publisher {
	return NewPublisher(repo, broker, logger.New("outbox-test"), Options{
		Service:     "ride-service",
		Exchange:    "ride_events",
		RoutePrefix: "ride.",
		Interval:    10 * time.Millisecond,
		BatchSize:   10,
		MaxRetries:  3,
		ClaimTTL:    30 * time.Second,
	})
}

func mustMessage(t *testing.T, eventType string) *domoutbox.Message {
	t.Helper()
	msg, err := domoutbox.NewMessage("ride", "ride-1", eventType, []byte(`{"k":"v"}`))
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	return msg
}

func TestCyclePublishesAndStampsProcessed(t *testing.T) {
	repo := &fakeRepo{pending: []*domoutbox.Message{
		mustMessage(t, "RIDE_CREATED"),
		mustMessage(t, "SEATS_RESERVED"),
	}}
	broker := &fakeBroker{ready: true}

	newTestPublisher(repo, broker).cycle(context.Background())

	if len(broker.published) != 2 {
		t.Fatalf("expected 2 published, got %d", len(broker.published))
	}
	if got := broker.published[0].routingKey; got != "ride.RIDE_CREATED" {
		t.Errorf("routing key = %q, want ride.RIDE_CREATED", got)
	}
	if got := broker.published[0].messageID; got != repo.pending[0].ID {
		t.Errorf("broker message id = %q, want outbox row id %q", got, repo.pending[0].ID)
	}
	if len(repo.processed) != 2 {
		t.Fatalf("expected 2 processed stamps, got %d", len(repo.processed))
	}
}

func TestCyclePublishesInCreationOrder(t *testing.T) {
	base := time.Now().UTC()
	first := mustMessage(t, "RIDE_CREATED")
	first.CreatedAt = base
	second := mustMessage(t, "SEATS_RESERVED")
	second.CreatedAt = base.Add(time.Second)
	third := mustMessage(t, "SEATS_RELEASED")
	third.CreatedAt = base.Add(2 * time.Second)

	// the claim may hand rows back in any order
	repo := &fakeRepo{pending: []*domoutbox.Message{third, first, second}}
	broker := &fakeBroker{ready: true}

	newTestPublisher(repo, broker).cycle(context.Background())

	if len(broker.published) != 3 {
		t.Fatalf("expected 3 published, got %d", len(broker.published))
	}
	want := []string{first.ID, second.ID, third.ID}
	for i, id := range want {
		if broker.published[i].messageID != id {
			t.Errorf("position %d: published %s, want %s", i, broker.published[i].messageID, id)
		}
	}
}

func TestCycleSkipsWhenBrokerNotReady(t *testing.T) {
	repo := &fakeRepo{pending: []*domoutbox.Message{mustMessage(t, "RIDE_CREATED")}}
	broker := &fakeBroker{ready: false}

	newTestPublisher(repo, broker).cycle(context.Background())

	if len(broker.published) != 0 {
		t.Fatalf("expected no publishes while broker down, got %d", len(broker.published))
	}
	if len(repo.processed) != 0 {
		t.Fatalf("expected no processed stamps, got %d", len(repo.processed))
	}
}

func TestCycleFailureDoesNotBlockBatch(t *testing.T) {
	bad := mustMessage(t, "SEATS_RESERVED")
	good := mustMessage(t, "RIDE_CREATED")
	repo := &fakeRepo{pending: []*domoutbox.Message{bad, good}}
	broker := &fakeBroker{ready: true, failTypes: map[string]bool{"SEATS_RESERVED": true}}

	newTestPublisher(repo, broker).cycle(context.Background())

	if len(broker.published) != 1 || broker.published[0].eventType != "RIDE_CREATED" {
		t.Fatalf("expected only RIDE_CREATED to publish, got %+v", broker.published)
	}
	if _, ok := repo.failed[bad.ID]; !ok {
		t.Errorf("expected failure recorded for %s", bad.ID)
	}
	if len(repo.processed) != 1 || repo.processed[0] != good.ID {
		t.Errorf("expected %s stamped processed, got %v", good.ID, repo.processed)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeRepo{}
	broker := &fakeBroker{ready: true}
	pub := newTestPublisher(repo, broker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pub.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}
