package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/jwt"
	"ride-booking/internal/ports"
)

// ----- Handler: POST /rides -----

func (handler *RideHTTPHandler) handleCreateRide(w http.ResponseWriter, r *http.Request) {
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
	var req contracts.CreateRideRequest
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

	// the driver comes from the token, never from the body
	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "departure_time must be RFC3339", err)
		return
	}

	in := ports.CreateRideInput{
		DriverID:        strings.TrimSpace(claims.Subject),
		OriginName:      strings.TrimSpace(req.OriginName),
		OriginLat:       req.OriginLat,
		OriginLng:       req.OriginLng,
		DestinationName: strings.TrimSpace(req.DestinationName),
		DestinationLat:  req.DestinationLat,
		DestinationLng:  req.DestinationLng,
		DepartureTime:   departure,
		TotalSeats:      req.TotalSeats,
		PricePerSeat:    req.PricePerSeat,
		Currency:        strings.TrimSpace(req.Currency),
		AutoConfirm:     req.AutoConfirm,
	}

	res, err := handler.svc.CreateRide(ctx, in)
	if err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(handler.logger.WithRideID(ctx, res.RideID), w, http.StatusCreated, contracts.CreateRideResponse{
		RideID:         res.RideID,
		Status:         res.Status,
		AvailableSeats: res.AvailableSeats,
		CreatedAt:      res.CreatedAt,
	})
}
