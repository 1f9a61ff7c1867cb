package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/money"
	domoutbox "ride-booking/internal/domain/outbox"
	domuser "ride-booking/internal/domain/user"
	"ride-booking/internal/general/logger"
	"ride-booking/internal/ports"
)

// ----- fakes -----

type fakeUow struct{}

func (f *fakeUow) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookingRepo struct {
	failCreate bool
	created    *booking.Booking
	stored     map[string]*booking.Booking
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	b.ID = "bk-1"
	f.created = b
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	b, ok := f.stored[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func (f *fakeBookingRepo) Save(ctx context.Context, b *booking.Booking) error {
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

type fakeRideClient struct {
	snap       booking.RideSnapshot
	reserveErr error
	releaseErr error
	reserved   int
	released   int
}

func (f *fakeRideClient) GetRideInfo(ctx context.Context, rideID string) (booking.RideSnapshot, error) {
	return f.snap, nil
}

func (f *fakeRideClient) ReserveSeats(ctx context.Context, rideID string, seats int) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved += seats
	return nil
}

func (f *fakeRideClient) ReleaseSeats(ctx context.Context, rideID string, seats int) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.released += seats
	return nil
}

type fakeUserClient struct {
	validation domuser.Validation
	calls      int
}

func (f *fakeUserClient) ValidateUser(ctx context.Context, userID string) (domuser.Validation, error) {
	f.calls++
	return f.validation, nil
}

// ----- helpers -----

func scheduledSnapshot() booking.RideSnapshot {
	return booking.RideSnapshot{
		RideID:         "ride-1",
		DriverID:       "drv-1",
		Status:         "SCHEDULED",
		DepartureTime:  time.Now().Add(time.Hour),
		TotalSeats:     4,
		AvailableSeats: 4,
		PricePerSeat:   money.Money{Amount: 1500, Currency: "EUR"},
	}
}

func newTestService(repo *fakeBookingRepo, ob *fakeOutbox, rides *fakeRideClient, users *fakeUserClient) ports.BookingService {
	return NewBookingService(
		logger.New("booking-test"),
		&fakeUow{},
		repo,
		ob,
		rides,
		users,
		Options{
			RPCTimeout:           time.Second,
			CompensationAttempts: 3,
			CompensationBackoff:  time.Millisecond,
		},
	)
}

func validPassenger() domuser.Validation {
	return domuser.Validation{Exists: true, Valid: true}
}

// ----- tests -----

func TestCreateBookingHappyPath(t *testing.T) {
	repo := &fakeBookingRepo{}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{snap: scheduledSnapshot()}
	users := &fakeUserClient{validation: validPassenger()}

	res, err := newTestService(repo, ob, rides, users).CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID: "ride-1", PassengerID: "pax-1", Seats: 2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if res.Status != "PENDING" {
		t.Errorf("status = %s, want PENDING", res.Status)
	}
	if res.TotalPrice != 3000 || res.Currency != "EUR" {
		t.Errorf("total price = %d %s, want 3000 EUR", res.TotalPrice, res.Currency)
	}
	if rides.reserved != 2 {
		t.Errorf("reserved seats = %d, want 2", rides.reserved)
	}
	if rides.released != 0 {
		t.Errorf("released seats = %d, want 0", rides.released)
	}
	if len(ob.appended) != 1 || ob.appended[0].EventType != "BOOKING_CREATED" {
		t.Fatalf("expected one BOOKING_CREATED outbox row, got %+v", ob.appended)
	}
	if ob.appended[0].AggregateID != "bk-1" {
		t.Errorf("outbox aggregate id = %s, want the stored booking id", ob.appended[0].AggregateID)
	}
}

func TestCreateBookingAutoConfirm(t *testing.T) {
	snap := scheduledSnapshot()
	snap.AutoConfirm = true
	repo := &fakeBookingRepo{}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{snap: snap}
	users := &fakeUserClient{validation: validPassenger()}

	res, err := newTestService(repo, ob, rides, users).CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID: "ride-1", PassengerID: "pax-1", Seats: 1,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if res.Status != "CONFIRMED" {
		t.Errorf("status = %s, want CONFIRMED", res.Status)
	}
	if len(ob.appended) != 2 {
		t.Fatalf("expected created+confirmed outbox rows, got %d", len(ob.appended))
	}
	if ob.appended[1].EventType != "BOOKING_CONFIRMED" {
		t.Errorf("second event = %s, want BOOKING_CONFIRMED", ob.appended[1].EventType)
	}
}

func TestCreateBookingCompensatesOnPersistFailure(t *testing.T) {
	repo := &fakeBookingRepo{failCreate: true}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{snap: scheduledSnapshot()}
	users := &fakeUserClient{validation: validPassenger()}

	_, err := newTestService(repo, ob, rides, users).CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID: "ride-1", PassengerID: "pax-1", Seats: 3,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if rides.reserved != 3 {
		t.Errorf("reserved seats = %d, want 3", rides.reserved)
	}
	if rides.released != 3 {
		t.Errorf("released seats = %d, want 3 (compensation)", rides.released)
	}
	if len(ob.appended) != 0 {
		t.Errorf("expected no outbox rows, got %d", len(ob.appended))
	}
}

func TestCreateBookingCapacityConflict(t *testing.T) {
	repo := &fakeBookingRepo{}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{
		snap:       scheduledSnapshot(),
		reserveErr: fault.Capacity("not enough available seats", nil),
	}
	users := &fakeUserClient{validation: validPassenger()}

	_, err := newTestService(repo, ob, rides, users).CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID: "ride-1", PassengerID: "pax-1", Seats: 5,
	})
	if !fault.IsKind(err, fault.KindCapacityConflict) {
		t.Fatalf("expected capacity conflict, got %v", err)
	}
	if repo.created != nil {
		t.Error("booking must not be persisted after a failed reservation")
	}
	if rides.released != 0 {
		t.Error("nothing to compensate when the reservation itself failed")
	}
}

func TestCreateBookingRejectsDriverAsPassenger(t *testing.T) {
	repo := &fakeBookingRepo{}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{snap: scheduledSnapshot()}
	users := &fakeUserClient{validation: validPassenger()}

	_, err := newTestService(repo, ob, rides, users).CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID: "ride-1", PassengerID: "drv-1", Seats: 1,
	})
	if !fault.IsKind(err, fault.KindRuleViolation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if rides.reserved != 0 {
		t.Error("seats must not be reserved for the ride's own driver")
	}
}

func TestCreateBookingUnknownPassenger(t *testing.T) {
	repo := &fakeBookingRepo{}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{snap: scheduledSnapshot()}
	users := &fakeUserClient{validation: domuser.Validation{Exists: false}}

	_, err := newTestService(repo, ob, rides, users).CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID: "ride-1", PassengerID: "ghost", Seats: 1,
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if rides.reserved != 0 {
		t.Error("seats must not be reserved for an unknown passenger")
	}
}

func TestCreateBookingRideNotScheduled(t *testing.T) {
	snap := scheduledSnapshot()
	snap.Status = "CANCELLED"
	repo := &fakeBookingRepo{}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{snap: snap}
	users := &fakeUserClient{validation: validPassenger()}

	_, err := newTestService(repo, ob, rides, users).CreateBooking(context.Background(), ports.CreateBookingInput{
		RideID: "ride-1", PassengerID: "pax-1", Seats: 1,
	})
	if !fault.IsKind(err, fault.KindRuleViolation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if rides.reserved != 0 {
		t.Error("seats must not be reserved on a cancelled ride")
	}
}
