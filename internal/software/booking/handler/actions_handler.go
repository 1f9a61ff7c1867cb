package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/jwt"
)

// ----- Handlers: POST /bookings/{booking_id}/confirm|reject|cancel|complete -----

func (handler *BookingHTTPHandler) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := r.PathValue("booking_id")
	ctx = handler.logger.WithBookingID(ctx, bookingID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	if err := handler.svc.ConfirmBooking(ctx, bookingID, strings.TrimSpace(claims.Subject)); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "CONFIRMED"})
}

func (handler *BookingHTTPHandler) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := r.PathValue("booking_id")
	ctx = handler.logger.WithBookingID(ctx, bookingID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	var req contracts.RejectBookingRequest
	if r.Body != nil {
		// reason is optional; an empty body is fine
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := handler.svc.RejectBooking(ctx, bookingID, strings.TrimSpace(claims.Subject), req.Reason); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "REJECTED"})
}

func (handler *BookingHTTPHandler) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := r.PathValue("booking_id")
	ctx = handler.logger.WithBookingID(ctx, bookingID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	var req contracts.CancelBookingRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := handler.svc.CancelBooking(ctx, bookingID, strings.TrimSpace(claims.Subject), req.Reason); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "CANCELLED"})
}

func (handler *BookingHTTPHandler) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := r.PathValue("booking_id")
	ctx = handler.logger.WithBookingID(ctx, bookingID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	if err := handler.svc.CompleteBooking(ctx, bookingID, strings.TrimSpace(claims.Subject)); err != nil {
		handler.writeFault(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, contracts.StatusResponse{Status: "COMPLETED"})
}
