package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ride-booking/internal/domain/fault"
	domoutbox "ride-booking/internal/domain/outbox"
	"ride-booking/internal/domain/ride"
	"ride-booking/internal/general/logger"
	"ride-booking/internal/general/postgres"
	"ride-booking/internal/ports"
)

// ----- fakes -----

type fakeUow struct{}

func (f *fakeUow) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRideRepo struct {
	stored map[string]*ride.Ride

	// conflictsLeft makes the next n Save calls fail with a version conflict,
	// exercising the retry-from-fresh-read loop.
	conflictsLeft int
	saves         int
}

func (f *fakeRideRepo) Create(ctx context.Context, r *ride.Ride) error {
	r.ID = "ride-1"
	if f.stored == nil {
		f.stored = map[string]*ride.Ride{}
	}
	f.stored[r.ID] = r
	return nil
}

func (f *fakeRideRepo) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	r, ok := f.stored[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	// hand out a copy the way a row scan would
	cp := *r
	return &cp, nil
}

func (f *fakeRideRepo) Save(ctx context.Context, r *ride.Ride) error {
	f.saves++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return postgres.ErrVersionConflict
	}
	cur, ok := f.stored[r.ID]
	if !ok {
		return postgres.ErrNotFound
	}
	// same version check the SQL UPDATE performs: the save only lands when
	// the aggregate advanced exactly one version past the stored row
	if cur.Version != r.Version-1 {
		return postgres.ErrVersionConflict
	}
	cp := *r
	f.stored[r.ID] = &cp
	return nil
}

type fakeOutbox struct {
	appended []*domoutbox.Message
}

func (f *fakeOutbox) Append(ctx context.Context, msg *domoutbox.Message) error {
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeOutbox) ClaimBatch(ctx context.Context, limit int, claimFor time.Duration, maxRetries int) ([]*domoutbox.Message, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkProcessed(ctx context.Context, id string, at time.Time) error { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error   { return nil }
func (f *fakeOutbox) CountExhausted(ctx context.Context, maxRetries int) (int, error)  { return 0, nil }

// ----- helpers -----

func newTestService(repo *fakeRideRepo, ob *fakeOutbox) ports.RideService {
	return NewRideService(logger.New("ride-test"), &fakeUow{}, repo, ob)
}

func createInput() ports.CreateRideInput {
	return ports.CreateRideInput{
		DriverID:        "drv-1",
		OriginName:      "Paris",
		OriginLat:       48.85,
		OriginLng:       2.35,
		DestinationName: "Lyon",
		DestinationLat:  45.76,
		DestinationLng:  4.84,
		DepartureTime:   time.Now().UTC().Add(2 * time.Hour),
		TotalSeats:      4,
		PricePerSeat:    1500,
		Currency:        "EUR",
	}
}

func seededRide(t *testing.T, repo *fakeRideRepo, ob *fakeOutbox) ports.RideService {
	t.Helper()
	svc := newTestService(repo, ob)
	if _, err := svc.CreateRide(context.Background(), createInput()); err != nil {
		t.Fatalf("seed ride: %v", err)
	}
	ob.appended = nil
	return svc
}

// ----- tests -----

func TestCreateRideWritesRideAndOutboxRow(t *testing.T) {
	repo := &fakeRideRepo{}
	ob := &fakeOutbox{}

	res, err := newTestService(repo, ob).CreateRide(context.Background(), createInput())
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}

	if res.RideID != "ride-1" {
		t.Errorf("ride id = %s, want ride-1", res.RideID)
	}
	if res.Status != "SCHEDULED" || res.AvailableSeats != 4 {
		t.Errorf("result = %+v, want SCHEDULED with 4 seats", res)
	}
	if len(ob.appended) != 1 || ob.appended[0].EventType != "RIDE_CREATED" {
		t.Fatalf("expected one RIDE_CREATED outbox row, got %+v", ob.appended)
	}
	if ob.appended[0].AggregateID != "ride-1" {
		t.Errorf("outbox aggregate id = %s, want the stored ride id", ob.appended[0].AggregateID)
	}
}

func TestCreateRideRejectsBadInput(t *testing.T) {
	in := createInput()
	in.OriginLat = 123.0

	_, err := newTestService(&fakeRideRepo{}, &fakeOutbox{}).CreateRide(context.Background(), in)
	if fault.KindOf(err) != fault.KindRuleViolation {
		t.Errorf("kind = %s, want %s", fault.KindOf(err), fault.KindRuleViolation)
	}
}

func TestReserveSeatsPersistsAndEmitsEvent(t *testing.T) {
	repo := &fakeRideRepo{}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	if err := svc.ReserveSeats(context.Background(), "ride-1", 3); err != nil {
		t.Fatalf("reserve seats: %v", err)
	}

	if got := repo.stored["ride-1"].AvailableSeats; got != 1 {
		t.Errorf("available seats = %d, want 1", got)
	}
	if len(ob.appended) != 1 || ob.appended[0].EventType != "SEATS_RESERVED" {
		t.Fatalf("expected one SEATS_RESERVED outbox row, got %+v", ob.appended)
	}
}

func TestReserveSeatsCapacityConflict(t *testing.T) {
	repo := &fakeRideRepo{}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	err := svc.ReserveSeats(context.Background(), "ride-1", 5)
	if fault.KindOf(err) != fault.KindCapacityConflict {
		t.Errorf("kind = %s, want %s", fault.KindOf(err), fault.KindCapacityConflict)
	}
	if got := repo.stored["ride-1"].AvailableSeats; got != 4 {
		t.Errorf("failed reservation mutated inventory: %d seats", got)
	}
	if len(ob.appended) != 0 {
		t.Errorf("failed reservation appended outbox rows: %+v", ob.appended)
	}
}

func TestReserveSeatsRetriesOnVersionConflict(t *testing.T) {
	repo := &fakeRideRepo{conflictsLeft: 2}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	if err := svc.ReserveSeats(context.Background(), "ride-1", 1); err != nil {
		t.Fatalf("reserve seats: %v", err)
	}
	if repo.saves != 3 {
		t.Errorf("saves = %d, want 3 (two conflicts then success)", repo.saves)
	}
}

func TestReserveSeatsGivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := &fakeRideRepo{conflictsLeft: 10}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	err := svc.ReserveSeats(context.Background(), "ride-1", 1)
	if fault.KindOf(err) != fault.KindConcurrencyConflict {
		t.Errorf("kind = %s, want %s", fault.KindOf(err), fault.KindConcurrencyConflict)
	}
}

func TestReserveSeatsUnknownRide(t *testing.T) {
	repo := &fakeRideRepo{}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	err := svc.ReserveSeats(context.Background(), "ride-missing", 1)
	if fault.KindOf(err) != fault.KindNotFound {
		t.Errorf("kind = %s, want %s", fault.KindOf(err), fault.KindNotFound)
	}
}

func TestReleaseSeatsAlwaysSucceeds(t *testing.T) {
	repo := &fakeRideRepo{}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	if err := svc.ReserveSeats(context.Background(), "ride-1", 2); err != nil {
		t.Fatalf("reserve seats: %v", err)
	}
	if err := svc.CancelRide(context.Background(), "ride-1", "drv-1", "weather"); err != nil {
		t.Fatalf("cancel ride: %v", err)
	}

	// compensating release on a cancelled ride must not fail
	if err := svc.ReleaseSeats(context.Background(), "ride-1", 2); err != nil {
		t.Fatalf("release seats: %v", err)
	}
	if got := repo.stored["ride-1"].AvailableSeats; got != 4 {
		t.Errorf("available seats = %d, want 4", got)
	}
}

func TestReleaseSeatsNonPositiveIsNoOp(t *testing.T) {
	repo := &fakeRideRepo{}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	// the aggregate does not advance its version for n <= 0, so a save here
	// would report a spurious conflict; the service must not attempt one
	if err := svc.ReleaseSeats(context.Background(), "ride-1", 0); err != nil {
		t.Fatalf("release of 0 seats: %v", err)
	}
	if err := svc.ReleaseSeats(context.Background(), "ride-1", -3); err != nil {
		t.Fatalf("release of -3 seats: %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("saves = %d, want 0", repo.saves)
	}
	if len(ob.appended) != 0 {
		t.Errorf("no-op release appended outbox rows: %+v", ob.appended)
	}
}

func TestStartRideOwnershipAndTiming(t *testing.T) {
	repo := &fakeRideRepo{}
	ob := &fakeOutbox{}
	svc := seededRide(t, repo, ob)

	if err := svc.StartRide(context.Background(), "ride-1", "drv-2"); fault.KindOf(err) != fault.KindRuleViolation {
		t.Errorf("foreign driver kind = %s, want %s", fault.KindOf(err), fault.KindRuleViolation)
	}

	// departure still in the future
	if err := svc.StartRide(context.Background(), "ride-1", "drv-1"); fault.KindOf(err) != fault.KindRuleViolation {
		t.Errorf("early start kind = %s, want %s", fault.KindOf(err), fault.KindRuleViolation)
	}

	repo.stored["ride-1"].DepartureTime = time.Now().UTC().Add(-time.Minute)
	if err := svc.StartRide(context.Background(), "ride-1", "drv-1"); err != nil {
		t.Fatalf("start ride: %v", err)
	}
	if got := repo.stored["ride-1"].Status; got != ride.StatusInProgress {
		t.Errorf("status = %s, want %s", got, ride.StatusInProgress)
	}
	if err := svc.CompleteRide(context.Background(), "ride-1", "drv-1"); err != nil {
		t.Fatalf("complete ride: %v", err)
	}
	if len(ob.appended) != 2 {
		t.Fatalf("expected 2 outbox rows, got %+v", ob.appended)
	}
	if ob.appended[0].EventType != "RIDE_STARTED" || ob.appended[1].EventType != "RIDE_COMPLETED" {
		t.Errorf("event types = %s, %s", ob.appended[0].EventType, ob.appended[1].EventType)
	}
}

func TestGetRideMapsNotFound(t *testing.T) {
	svc := newTestService(&fakeRideRepo{}, &fakeOutbox{})

	_, err := svc.GetRide(context.Background(), "ride-1")
	if fault.KindOf(err) != fault.KindNotFound {
		t.Errorf("kind = %s, want %s", fault.KindOf(err), fault.KindNotFound)
	}

	var fe *fault.Error
	if !errors.As(err, &fe) {
		t.Fatalf("error is not a fault: %v", err)
	}
}
