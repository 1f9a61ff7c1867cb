package booking

import (
	"errors"
	"testing"
	"time"

	"ride-booking/internal/domain/money"
)

func testSnapshot(t *testing.T, autoConfirm bool) RideSnapshot {
	t.Helper()
	price, err := money.New(1500, "EUR")
	if err != nil {
		t.Fatalf("money.New: %v", err)
	}
	return RideSnapshot{
		RideID:         "ride-1",
		DriverID:       "drv-1",
		Status:         "SCHEDULED",
		DepartureTime:  time.Now().UTC().Add(2 * time.Hour),
		TotalSeats:     4,
		AvailableSeats: 4,
		PricePerSeat:   price,
		AutoConfirm:    autoConfirm,
	}
}

func pendingBooking(t *testing.T) *Booking {
	t.Helper()
	b, _, err := New(testSnapshot(t, false), "psg-1", 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNewBookingStartsPending(t *testing.T) {
	b, events, err := New(testSnapshot(t, false), "psg-1", 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if b.Status != StatusPending {
		t.Errorf("status = %s, want %s", b.Status, StatusPending)
	}
	if b.TotalPrice.Amount != 3000 || b.TotalPrice.Currency != "EUR" {
		t.Errorf("total price = %+v, want 3000 EUR", b.TotalPrice)
	}
	if b.DriverID != "drv-1" {
		t.Errorf("driver id not denormalized: %q", b.DriverID)
	}
	if b.Version != 1 {
		t.Errorf("version = %d, want 1", b.Version)
	}
	if len(events) != 1 || events[0].Type != EventBookingCreated {
		t.Fatalf("events = %+v, want single %s", events, EventBookingCreated)
	}
}

func TestNewBookingAutoConfirmRaisesBothEvents(t *testing.T) {
	b, events, err := New(testSnapshot(t, true), "psg-1", 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if b.Status != StatusConfirmed {
		t.Errorf("status = %s, want %s", b.Status, StatusConfirmed)
	}
	if b.ConfirmedAt == nil {
		t.Error("ConfirmedAt not set")
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventBookingCreated || events[1].Type != EventBookingConfirmed {
		t.Errorf("event types = %s, %s", events[0].Type, events[1].Type)
	}
}

func TestNewBookingValidation(t *testing.T) {
	snap := testSnapshot(t, false)

	cases := []struct {
		name      string
		passenger string
		seats     int
		wantErr   error
	}{
		{"missing passenger", "  ", 2, ErrPassengerRequired},
		{"zero seats", "psg-1", 0, ErrSeatCountInvalid},
		{"negative seats", "psg-1", -1, ErrSeatCountInvalid},
		{"driver books own ride", "drv-1", 2, ErrPassengerIsDriver},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := New(snap, tc.passenger, tc.seats)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfirmOnlyFromPending(t *testing.T) {
	b := pendingBooking(t)

	events, err := b.Confirm()
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Errorf("status = %s, want %s", b.Status, StatusConfirmed)
	}
	if len(events) != 1 || events[0].Type != EventBookingConfirmed {
		t.Fatalf("events = %+v, want single %s", events, EventBookingConfirmed)
	}

	if _, err := b.Confirm(); !errors.Is(err, ErrNotConfirmable) {
		t.Errorf("second confirm err = %v, want %v", err, ErrNotConfirmable)
	}
}

func TestRejectCarriesSeatsToRelease(t *testing.T) {
	b := pendingBooking(t)

	events, err := b.Reject("ride is full for luggage")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if b.Status != StatusRejected {
		t.Errorf("status = %s, want %s", b.Status, StatusRejected)
	}
	if len(events) != 1 || events[0].Type != EventBookingRejected {
		t.Fatalf("events = %+v, want single %s", events, EventBookingRejected)
	}
	if got := events[0].Data["seats_to_release"]; got != b.Seats {
		t.Errorf("seats_to_release = %v, want %d", got, b.Seats)
	}

	if _, err := b.Reject("again"); !errors.Is(err, ErrNotRejectable) {
		t.Errorf("second reject err = %v, want %v", err, ErrNotRejectable)
	}
}

func TestRejectRequiresPending(t *testing.T) {
	b := pendingBooking(t)
	if _, err := b.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if _, err := b.Reject("too late"); !errors.Is(err, ErrNotRejectable) {
		t.Errorf("err = %v, want %v", err, ErrNotRejectable)
	}
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	// pending cancel by passenger
	b := pendingBooking(t)
	events, err := b.Cancel("change of plans", true)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if b.Status != StatusCancelled {
		t.Errorf("status = %s, want %s", b.Status, StatusCancelled)
	}
	if got := events[0].Data["cancelled_by"]; got != "passenger" {
		t.Errorf("cancelled_by = %v, want passenger", got)
	}
	if got := events[0].Data["seats_to_release"]; got != b.Seats {
		t.Errorf("seats_to_release = %v, want %d", got, b.Seats)
	}

	// confirmed cancel by driver
	b = pendingBooking(t)
	if _, err := b.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	events, err = b.Cancel("car broke down", false)
	if err != nil {
		t.Fatalf("Cancel after confirm: %v", err)
	}
	if got := events[0].Data["cancelled_by"]; got != "driver" {
		t.Errorf("cancelled_by = %v, want driver", got)
	}
}

func TestCancelRejectsTerminalStates(t *testing.T) {
	b := pendingBooking(t)
	if _, err := b.Reject("full"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if _, err := b.Cancel("late", true); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("err = %v, want %v", err, ErrNotCancellable)
	}
}

func TestCompleteOnlyFromConfirmed(t *testing.T) {
	b := pendingBooking(t)

	if _, err := b.Complete(); !errors.Is(err, ErrNotCompletable) {
		t.Fatalf("complete pending err = %v, want %v", err, ErrNotCompletable)
	}

	if _, err := b.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	events, err := b.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if b.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", b.Status, StatusCompleted)
	}
	if b.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
	if len(events) != 1 || events[0].Type != EventBookingCompleted {
		t.Fatalf("events = %+v, want single %s", events, EventBookingCompleted)
	}
	if b.Version != 3 {
		t.Errorf("version = %d, want 3 after two transitions", b.Version)
	}
}
