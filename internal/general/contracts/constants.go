package contracts

// Exchanges (one topic exchange per originating service).
const (
	ExchangeRideEvents    = "ride_events"
	ExchangeBookingEvents = "booking_events"
)

// Queues
const (
	QueueNotifications = "notifications"
)

// Routing patterns: "<service>.<eventType>", e.g. "booking.BOOKING_CREATED".
const (
	RouteRidePrefix    = "ride."    // {event_type}
	RouteBookingPrefix = "booking." // {event_type}
)

// Aggregate type tags used in outbox rows and event envelopes.
const (
	AggregateRide    = "ride"
	AggregateBooking = "booking"
)
