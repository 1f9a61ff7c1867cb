package contracts

import "time"

// ----- Ride command surface -----

type CreateRideRequest struct {
	OriginName      string  `json:"origin_name"`
	OriginLat       float64 `json:"origin_lat"`
	OriginLng       float64 `json:"origin_lng"`
	DestinationName string  `json:"destination_name"`
	DestinationLat  float64 `json:"destination_lat"`
	DestinationLng  float64 `json:"destination_lng"`
	DepartureTime   string  `json:"departure_time"` // RFC3339
	TotalSeats      int     `json:"total_seats"`
	PricePerSeat    int64   `json:"price_per_seat"` // minor units
	Currency        string  `json:"currency"`
	AutoConfirm     bool    `json:"auto_confirm"`
}

type CreateRideResponse struct {
	RideID         string    `json:"ride_id"`
	Status         string    `json:"status"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
}

type CancelRideRequest struct {
	Reason string `json:"reason"`
}

// ----- Booking command surface -----

type CreateBookingRequest struct {
	RideID string `json:"ride_id"`
	Seats  int    `json:"seats"`
}

type CreateBookingResponse struct {
	BookingID  string    `json:"booking_id"`
	Status     string    `json:"status"`
	Seats      int       `json:"seats"`
	TotalPrice int64     `json:"total_price"`
	Currency   string    `json:"currency"`
	BookedAt   time.Time `json:"booked_at"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
