package service

import (
	"context"
	"testing"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/fault"
)

func pendingBooking(t *testing.T) *booking.Booking {
	t.Helper()
	b, _, err := booking.New(scheduledSnapshot(), "pax-1", 2)
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	b.ID = "bk-1"
	return b
}

func TestConfirmBookingByDriver(t *testing.T) {
	repo := &fakeBookingRepo{stored: map[string]*booking.Booking{"bk-1": pendingBooking(t)}}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{}
	users := &fakeUserClient{}

	err := newTestService(repo, ob, rides, users).ConfirmBooking(context.Background(), "bk-1", "drv-1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if got := repo.stored["bk-1"].Status; got != booking.StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got)
	}
	if len(ob.appended) != 1 || ob.appended[0].EventType != "BOOKING_CONFIRMED" {
		t.Fatalf("expected one BOOKING_CONFIRMED outbox row, got %+v", ob.appended)
	}
	if rides.released != 0 {
		t.Error("confirming must keep the seats reserved")
	}
}

func TestConfirmBookingWrongDriver(t *testing.T) {
	repo := &fakeBookingRepo{stored: map[string]*booking.Booking{"bk-1": pendingBooking(t)}}

	err := newTestService(repo, &fakeOutbox{}, &fakeRideClient{}, &fakeUserClient{}).
		ConfirmBooking(context.Background(), "bk-1", "someone-else")
	if !fault.IsKind(err, fault.KindRuleViolation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
}

func TestRejectBookingReleasesSeats(t *testing.T) {
	repo := &fakeBookingRepo{stored: map[string]*booking.Booking{"bk-1": pendingBooking(t)}}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{}

	err := newTestService(repo, ob, rides, &fakeUserClient{}).
		RejectBooking(context.Background(), "bk-1", "drv-1", "ride is full for friends")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	if got := repo.stored["bk-1"].Status; got != booking.StatusRejected {
		t.Errorf("status = %s, want REJECTED", got)
	}
	if rides.released != 2 {
		t.Errorf("released seats = %d, want 2", rides.released)
	}
}

func TestCancelBookingByPassenger(t *testing.T) {
	repo := &fakeBookingRepo{stored: map[string]*booking.Booking{"bk-1": pendingBooking(t)}}
	ob := &fakeOutbox{}
	rides := &fakeRideClient{}

	err := newTestService(repo, ob, rides, &fakeUserClient{}).
		CancelBooking(context.Background(), "bk-1", "pax-1", "changed plans")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := repo.stored["bk-1"].Status; got != booking.StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", got)
	}
	if rides.released != 2 {
		t.Errorf("released seats = %d, want 2", rides.released)
	}
}

func TestCancelBookingByStranger(t *testing.T) {
	repo := &fakeBookingRepo{stored: map[string]*booking.Booking{"bk-1": pendingBooking(t)}}
	rides := &fakeRideClient{}

	err := newTestService(repo, &fakeOutbox{}, rides, &fakeUserClient{}).
		CancelBooking(context.Background(), "bk-1", "stranger", "")
	if !fault.IsKind(err, fault.KindRuleViolation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if rides.released != 0 {
		t.Error("no seats may be released for a refused cancel")
	}
}

func TestCompleteBookingRequiresConfirmed(t *testing.T) {
	repo := &fakeBookingRepo{stored: map[string]*booking.Booking{"bk-1": pendingBooking(t)}}

	err := newTestService(repo, &fakeOutbox{}, &fakeRideClient{}, &fakeUserClient{}).
		CompleteBooking(context.Background(), "bk-1", "drv-1")
	if !fault.IsKind(err, fault.KindRuleViolation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
}
