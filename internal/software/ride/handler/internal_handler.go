package handler

import (
	"encoding/json"
	"net/http"

	"ride-booking/internal/general/contracts"
)

// ----- Internal seat-reservation surface, called by the booking service -----

func (handler *RideHTTPHandler) handleGetRide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rideID := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideID)

	ride, err := handler.svc.GetRide(ctx, rideID)
	if err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.RideSnapshot{
		RideID:         ride.ID,
		DriverID:       ride.DriverID,
		Status:         ride.Status.String(),
		DepartureTime:  ride.DepartureTime,
		TotalSeats:     ride.TotalSeats,
		AvailableSeats: ride.AvailableSeats,
		PricePerSeat:   ride.PricePerSeat.Amount,
		Currency:       ride.PricePerSeat.Currency,
		AutoConfirm:    ride.AutoConfirm,
	})
}

func (handler *RideHTTPHandler) handleReserveSeats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rideID := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideID)

	var req contracts.SeatChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	if req.Seats < 1 {
		handler.httpError(ctx, w, http.StatusUnprocessableEntity, "seats must be positive", nil)
		return
	}

	if err := handler.svc.ReserveSeats(ctx, rideID, req.Seats); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "RESERVED"})
}

func (handler *RideHTTPHandler) handleReleaseSeats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rideID := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideID)

	var req contracts.SeatChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	if req.Seats < 1 {
		handler.httpError(ctx, w, http.StatusUnprocessableEntity, "seats must be positive", nil)
		return
	}

	if err := handler.svc.ReleaseSeats(ctx, rideID, req.Seats); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "RELEASED"})
}
