package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ride-booking/internal/domain/booking"
	"ride-booking/internal/domain/fault"
	"ride-booking/internal/domain/money"
	"ride-booking/internal/general/contracts"
	"ride-booking/internal/general/jwt"
	"ride-booking/internal/ports"
)

// HTTPRideClient calls the ride service's internal seat endpoints. Every
// request carries a service token and is bounded by the caller's context;
// errors come back as fault kinds reconstructed from the response body.
type HTTPRideClient struct {
	baseURL string
	client  *http.Client
	tokens  *jwt.Manager
	caller  string
}

// NewHTTPRideClient constructs a ride client for the given base URL.
func NewHTTPRideClient(baseURL string, timeout time.Duration, tokens *jwt.Manager, caller string) ports.RideClient {
	return &HTTPRideClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		caller:  caller,
	}
}

// GetRideInfo fetches the current ride snapshot.
func (c *HTTPRideClient) GetRideInfo(ctx context.Context, rideID string) (booking.RideSnapshot, error) {
	var wire contracts.RideSnapshot
	err := c.do(ctx, http.MethodGet, "/internal/rides/"+rideID, nil, &wire)
	if err != nil {
		return booking.RideSnapshot{}, err
	}

	// map the wire record onto the domain view
	return booking.RideSnapshot{
		RideID:         wire.RideID,
		DriverID:       wire.DriverID,
		Status:         wire.Status,
		DepartureTime:  wire.DepartureTime,
		TotalSeats:     wire.TotalSeats,
		AvailableSeats: wire.AvailableSeats,
		PricePerSeat:   money.Money{Amount: wire.PricePerSeat, Currency: wire.Currency},
		AutoConfirm:    wire.AutoConfirm,
	}, nil
}

// ReserveSeats atomically decrements the ride's seat pool.
func (c *HTTPRideClient) ReserveSeats(ctx context.Context, rideID string, seats int) error {
	body := contracts.SeatChangeRequest{Seats: seats}
	return c.do(ctx, http.MethodPost, "/internal/rides/"+rideID+"/reserve", body, nil)
}

// ReleaseSeats returns previously reserved seats to the pool. The ride side
// treats this as always-safe, so any error here is a transport failure.
func (c *HTTPRideClient) ReleaseSeats(ctx context.Context, rideID string, seats int) error {
	body := contracts.SeatChangeRequest{Seats: seats}
	return c.do(ctx, http.MethodPost, "/internal/rides/"+rideID+"/release", body, nil)
}

// do performs one authenticated request and decodes the response into out.
func (c *HTTPRideClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fault.Internal("encode request body", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fault.Internal("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.IssueServiceToken(c.caller)
	if err != nil {
		return fault.Internal("issue service token", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fault.Remote("ride service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fault.Remote("decode ride service response", err)
		}
		return nil
	}

	return decodeFault(resp, "ride service")
}

// decodeFault rebuilds a kinded error from an error response. The body's kind
// wins when present; otherwise the status code decides.
func decodeFault(resp *http.Response, remote string) error {
	var er contracts.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&er)

	msg := er.Error
	if msg == "" {
		msg = fmt.Sprintf("%s returned %d", remote, resp.StatusCode)
	}

	if kind, ok := fault.ParseKind(er.Kind); ok {
		return &fault.Error{Kind: kind, Msg: msg}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fault.NotFound(msg, nil)
	case http.StatusConflict:
		return fault.Capacity(msg, nil)
	case http.StatusUnprocessableEntity:
		return fault.Rule(msg, nil)
	default:
		return fault.Remote(msg, nil)
	}
}
