package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/jwt"
)

// ----- Handlers: POST /rides/{ride_id}/start|complete|cancel -----

func (handler *RideHTTPHandler) handleStartRide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rideID := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	if err := handler.svc.StartRide(ctx, rideID, strings.TrimSpace(claims.Subject)); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "IN_PROGRESS"})
}

func (handler *RideHTTPHandler) handleCompleteRide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rideID := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	if err := handler.svc.CompleteRide(ctx, rideID, strings.TrimSpace(claims.Subject)); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "COMPLETED"})
}

func (handler *RideHTTPHandler) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rideID := r.PathValue("ride_id")
	ctx = handler.logger.WithRideID(ctx, rideID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	var req contracts.CancelRideRequest
	if r.Body != nil {
		// reason is optional; an empty body is fine
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := handler.svc.CancelRide(ctx, rideID, strings.TrimSpace(claims.Subject), req.Reason); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "CANCELLED"})
}
