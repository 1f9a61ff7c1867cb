package ride

import (
	"errors"
	"testing"
	"time"

	"ride-booking/internal/domain/geo"
	"ride-booking/internal/domain/money"
)

func testLocation(name string) geo.Location {
	return geo.Location{Name: name, Latitude: 48.85, Longitude: 2.35}
}

func testPrice(t *testing.T) money.Money {
	t.Helper()
	price, err := money.New(1500, "EUR")
	if err != nil {
		t.Fatalf("money.New: %v", err)
	}
	return price
}

func scheduledRide(t *testing.T, seats int) *Ride {
	t.Helper()
	r, _, err := NewRide("drv-1", testLocation("Paris"), testLocation("Lyon"), time.Now().UTC().Add(2*time.Hour), seats, testPrice(t), false)
	if err != nil {
		t.Fatalf("NewRide: %v", err)
	}
	return r
}

func TestNewRideStartsScheduledWithFullInventory(t *testing.T) {
	departure := time.Now().UTC().Add(2 * time.Hour)
	r, events, err := NewRide("drv-1", testLocation("Paris"), testLocation("Lyon"), departure, 4, testPrice(t), true)
	if err != nil {
		t.Fatalf("NewRide: %v", err)
	}

	if r.Status != StatusScheduled {
		t.Errorf("status = %s, want %s", r.Status, StatusScheduled)
	}
	if r.AvailableSeats != 4 || r.TotalSeats != 4 {
		t.Errorf("seats = %d/%d, want 4/4", r.AvailableSeats, r.TotalSeats)
	}
	if r.Version != 1 {
		t.Errorf("version = %d, want 1", r.Version)
	}
	if !r.AutoConfirm {
		t.Error("auto confirm flag not carried")
	}
	if len(events) != 1 || events[0].Type != EventRideCreated {
		t.Fatalf("events = %+v, want single %s", events, EventRideCreated)
	}
}

func TestNewRideValidation(t *testing.T) {
	departure := time.Now().UTC().Add(2 * time.Hour)
	price := testPrice(t)

	cases := []struct {
		name      string
		driver    string
		departure time.Time
		seats     int
		wantErr   error
	}{
		{"missing driver", "  ", departure, 4, ErrDriverRequired},
		{"zero departure", "drv-1", time.Time{}, 4, ErrDepartureRequired},
		{"departure in past", "drv-1", time.Now().UTC().Add(-time.Minute), 4, ErrDepartureInPast},
		{"zero seats", "drv-1", departure, 0, ErrSeatCountInvalid},
		{"negative seats", "drv-1", departure, -2, ErrSeatCountInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := NewRide(tc.driver, testLocation("Paris"), testLocation("Lyon"), tc.departure, tc.seats, price, false)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestReserveSeatsDecrementsInventory(t *testing.T) {
	r := scheduledRide(t, 4)

	events, err := r.ReserveSeats(3)
	if err != nil {
		t.Fatalf("ReserveSeats: %v", err)
	}
	if r.AvailableSeats != 1 {
		t.Errorf("available = %d, want 1", r.AvailableSeats)
	}
	if r.Version != 2 {
		t.Errorf("version = %d, want 2", r.Version)
	}
	if len(events) != 1 || events[0].Type != EventSeatsReserved {
		t.Fatalf("events = %+v, want single %s", events, EventSeatsReserved)
	}
}

func TestReserveSeatsRejectsOverbooking(t *testing.T) {
	r := scheduledRide(t, 2)

	if _, err := r.ReserveSeats(3); !errors.Is(err, ErrNotEnoughSeats) {
		t.Fatalf("err = %v, want %v", err, ErrNotEnoughSeats)
	}
	if r.AvailableSeats != 2 {
		t.Errorf("failed reservation mutated inventory: available = %d", r.AvailableSeats)
	}
	if r.Version != 1 {
		t.Errorf("failed reservation bumped version to %d", r.Version)
	}
}

func TestReserveSeatsRejectsNonScheduledRide(t *testing.T) {
	r := scheduledRide(t, 4)
	if _, err := r.Cancel("weather"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := r.ReserveSeats(1); !errors.Is(err, ErrNotScheduled) {
		t.Errorf("err = %v, want %v", err, ErrNotScheduled)
	}
}

func TestReleaseSeatsNeverFailsAndCapsAtTotal(t *testing.T) {
	r := scheduledRide(t, 4)
	if _, err := r.ReserveSeats(3); err != nil {
		t.Fatalf("ReserveSeats: %v", err)
	}

	// release more than reserved; inventory must cap at TotalSeats
	events := r.ReleaseSeats(10)
	if r.AvailableSeats != r.TotalSeats {
		t.Errorf("available = %d, want %d", r.AvailableSeats, r.TotalSeats)
	}
	if len(events) != 1 || events[0].Type != EventSeatsReleased {
		t.Fatalf("events = %+v, want single %s", events, EventSeatsReleased)
	}
	if got := events[0].Data["seats"]; got != 3 {
		t.Errorf("released seats = %v, want 3", got)
	}

	// release on a cancelled ride still succeeds
	if _, err := r.Cancel("weather"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if events := r.ReleaseSeats(1); events != nil {
		// full inventory, so a no-seats release event is fine but capped at 0
		if got := events[0].Data["seats"]; got != 0 {
			t.Errorf("released seats = %v, want 0", got)
		}
	}
}

func TestReleaseSeatsIgnoresNonPositiveCounts(t *testing.T) {
	r := scheduledRide(t, 4)

	if events := r.ReleaseSeats(0); events != nil {
		t.Errorf("release of 0 seats raised events: %+v", events)
	}
	if events := r.ReleaseSeats(-1); events != nil {
		t.Errorf("release of -1 seats raised events: %+v", events)
	}
	if r.Version != 1 {
		t.Errorf("no-op release bumped version to %d", r.Version)
	}
}

func TestStartRequiresDepartureTimeReached(t *testing.T) {
	r := scheduledRide(t, 4)

	if _, err := r.Start(); !errors.Is(err, ErrDepartureNotReached) {
		t.Fatalf("err = %v, want %v", err, ErrDepartureNotReached)
	}

	r.DepartureTime = time.Now().UTC().Add(-time.Minute)
	events, err := r.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.Status != StatusInProgress {
		t.Errorf("status = %s, want %s", r.Status, StatusInProgress)
	}
	if r.StartedAt == nil {
		t.Error("StartedAt not set")
	}
	if len(events) != 1 || events[0].Type != EventRideStarted {
		t.Fatalf("events = %+v, want single %s", events, EventRideStarted)
	}
}

func TestCompleteRequiresInProgress(t *testing.T) {
	r := scheduledRide(t, 4)

	if _, err := r.Complete(); !errors.Is(err, ErrInvalidStatusChange) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidStatusChange)
	}

	r.DepartureTime = time.Now().UTC().Add(-time.Minute)
	if _, err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	events, err := r.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if r.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", r.Status, StatusCompleted)
	}
	if len(events) != 1 || events[0].Type != EventRideCompleted {
		t.Fatalf("events = %+v, want single %s", events, EventRideCompleted)
	}
}

func TestCancelRejectsTerminalStates(t *testing.T) {
	r := scheduledRide(t, 4)

	events, err := r.Cancel("no passengers")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Errorf("status = %s, want %s", r.Status, StatusCancelled)
	}
	if r.CancellationReason == nil || *r.CancellationReason != "no passengers" {
		t.Errorf("reason = %v, want %q", r.CancellationReason, "no passengers")
	}
	if len(events) != 1 || events[0].Type != EventRideCancelled {
		t.Fatalf("events = %+v, want single %s", events, EventRideCancelled)
	}

	if _, err := r.Cancel("again"); !errors.Is(err, ErrInvalidStatusChange) {
		t.Errorf("second cancel err = %v, want %v", err, ErrInvalidStatusChange)
	}
}

func TestLifecycleBumpsVersionPerTransition(t *testing.T) {
	r := scheduledRide(t, 4)
	r.DepartureTime = time.Now().UTC().Add(-time.Minute)

	if _, err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := r.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if r.Version != 3 {
		t.Errorf("version = %d, want 3 after two transitions", r.Version)
	}
}
