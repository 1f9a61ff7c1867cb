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

// RideHTTPHandler adapts HTTP requests to the RideService.
type RideHTTPHandler struct {
	svc    ports.RideService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewRideHTTPHandler wires an HTTP handler around the RideService.
func NewRideHTTPHandler(svc ports.RideService, logger *logger.Logger, auth *jwt.Manager) *RideHTTPHandler {
	return &RideHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts ride endpoints on the provided mux. Every route gets
// an explicit middleware chain; nothing is wrapped implicitly.
func (handler *RideHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	driver := []func(http.Handler) http.Handler{
		handler.withRequestID,
		jwt.RequireRoles(handler.auth, user.RoleDriver),
		handler.withLogging,
	}
	service := []func(http.Handler) http.Handler{
		handler.withRequestID,
		jwt.RequireRoles(handler.auth, user.RoleService),
		handler.withLogging,
	}

	// public command surface (driver-facing)
	mux.Handle("POST /rides", chain(http.HandlerFunc(handler.handleCreateRide), driver...))
	mux.Handle("POST /rides/{ride_id}/start", chain(http.HandlerFunc(handler.handleStartRide), driver...))
	mux.Handle("POST /rides/{ride_id}/complete", chain(http.HandlerFunc(handler.handleCompleteRide), driver...))
	mux.Handle("POST /rides/{ride_id}/cancel", chain(http.HandlerFunc(handler.handleCancelRide), driver...))

	// internal seat-reservation surface (booking service only)
	mux.Handle("GET /internal/rides/{ride_id}", chain(http.HandlerFunc(handler.handleGetRide), service...))
	mux.Handle("POST /internal/rides/{ride_id}/reserve", chain(http.HandlerFunc(handler.handleReserveSeats), service...))
	mux.Handle("POST /internal/rides/{ride_id}/release", chain(http.HandlerFunc(handler.handleReleaseSeats), service...))

	mux.HandleFunc("GET /rides/health", handler.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (handler *RideHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, contracts.StatusResponse{Status: "ok"})
}

// jsonResponse encodes to a buffer first so the status can change on failure.
func (handler *RideHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
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
// error body. The kind travels with the message so service callers can
// rebuild it.
func (handler *RideHTTPHandler) writeFault(ctx context.Context, w http.ResponseWriter, err error) {
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
func (handler *RideHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	handler.logger.Error(ctx, "validation_failed", msg, err, nil)
	handler.jsonResponse(ctx, w, status, contracts.ErrorResponse{Error: msg})
}
