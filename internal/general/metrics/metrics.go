package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OutboxPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "outbox_published_total", Help: "Outbox messages delivered to the broker"},
		[]string{"service"},
	)
	OutboxPublishFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "outbox_publish_failures_total", Help: "Outbox publish attempts that failed"},
		[]string{"service"},
	)
	OutboxExhausted = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "ride_booking", Name: "outbox_exhausted_messages", Help: "Unprocessed outbox messages past their retry budget"},
		[]string{"service"},
	)

	BookingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "bookings_created_total", Help: "Bookings successfully created"},
	)
	SeatReservationConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "seat_reservation_conflicts_total", Help: "Booking attempts rejected for insufficient capacity"},
	)
	CompensationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "compensation_failures_total", Help: "Seat releases that exhausted their retry budget and need reconciliation"},
	)
)
