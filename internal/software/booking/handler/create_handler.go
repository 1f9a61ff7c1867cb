package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/jwt"
	"ride-booking/internal/ports"
)

// ----- Handler: POST /bookings -----

func (handler *BookingHTTPHandler) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// check the content type
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	// limit body size
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	// decode strictly
	var req contracts.CreateBookingRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	// the passenger comes from the token, never from the body
	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	if strings.TrimSpace(req.RideID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "ride_id is required", nil)
		return
	}

	res, err := handler.svc.CreateBooking(ctx, ports.CreateBookingInput{
		RideID:      strings.TrimSpace(req.RideID),
		PassengerID: strings.TrimSpace(claims.Subject),
		Seats:       req.Seats,
	})
	if err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(handler.logger.WithBookingID(ctx, res.BookingID), w, http.StatusCreated, contracts.CreateBookingResponse{
		BookingID:  res.BookingID,
		Status:     res.Status,
		Seats:      res.Seats,
		TotalPrice: res.TotalPrice,
		Currency:   res.Currency,
		BookedAt:   res.BookedAt,
	})
}
