package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/user"
	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/jwt"
	"ride-booking/internal/general/logger"
	"ride-booking/internal/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BookingHTTPHandler adapts HTTP requests to the BookingService.
type BookingHTTPHandler struct {
	svc    ports.BookingService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewBookingHTTPHandler wires an HTTP handler around the BookingService.
func NewBookingHTTPHandler(svc ports.BookingService, logger *logger.Logger, auth *jwt.Manager) *BookingHTTPHandler {
	return &BookingHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts booking endpoints on the provided mux. Every route
// gets an explicit middleware chain; nothing is wrapped implicitly.
func (handler *BookingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	passenger := []func(http.Handler) http.Handler{
		handler.withRequestID,
		jwt.RequireRoles(handler.auth, user.RolePassenger),
		handler.withLogging,
	}
	driver := []func(http.Handler) http.Handler{
		handler.withRequestID,
		jwt.RequireRoles(handler.auth, user.RoleDriver),
		handler.withLogging,
	}
	anyActor := []func(http.Handler) http.Handler{
		handler.withRequestID,
		jwt.RequireRoles(handler.auth, user.RolePassenger, user.RoleDriver),
		handler.withLogging,
	}

	mux.Handle("POST /bookings", chain(http.HandlerFunc(handler.handleCreateBooking), passenger...))
	mux.Handle("POST /bookings/{booking_id}/confirm", chain(http.HandlerFunc(handler.handleConfirmBooking), driver...))
	mux.Handle("POST /bookings/{booking_id}/reject", chain(http.HandlerFunc(handler.handleRejectBooking), driver...))
	mux.Handle("POST /bookings/{booking_id}/complete", chain(http.HandlerFunc(handler.handleCompleteBooking), driver...))

	// passenger cancels their own booking, driver any booking on their ride;
	// the service decides which one the actor is
	mux.Handle("POST /bookings/{booking_id}/cancel", chain(http.HandlerFunc(handler.handleCancelBooking), anyActor...))

	mux.HandleFunc("GET /bookings/health", handler.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (handler *BookingHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, contracts.StatusResponse{Status: "ok"})
}

// jsonResponse encodes to a buffer first so the status can change on failure.
func (handler *BookingHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// writeFault maps the error's kind onto an HTTP status and writes the shared
// error body.
func (handler *BookingHTTPHandler) writeFault(ctx context.Context, w http.ResponseWriter, err error) {
	kind := fault.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindRuleViolation:
		status = http.StatusUnprocessableEntity
	case fault.KindCapacityConflict, fault.KindConcurrencyConflict:
		status = http.StatusConflict
	case fault.KindRemoteFailure, fault.KindPublishFailure:
		status = http.StatusBadGateway
	}

	handler.logger.Error(ctx, "request_failed", err.Error(), err, map[string]any{
		"kind":   string(kind),
		"status": status,
	})

	handler.jsonResponse(ctx, w, status, contracts.ErrorResponse{
		Error: err.Error(),
		Kind:  string(kind),
	})
}

// httpError sends a plain JSON error for boundary problems (bad JSON, auth).
func (handler *BookingHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	handler.logger.Error(ctx, "validation_failed", msg, err, nil)
	handler.jsonResponse(ctx, w, status, contracts.ErrorResponse{Error: msg})
}
