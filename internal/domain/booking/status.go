package booking

import (
	"errors"
	"strings"
)

// Status is a booking status as stored in the `bookings` table.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var ErrInvalidStatus = errors.New("invalid booking status")

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed booking status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// CanTransitionTo encodes the booking lifecycle DAG.
func (status Status) CanTransitionTo(next Status) bool {
	switch status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusRejected || next == StatusCancelled

	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled

	case StatusRejected, StatusCancelled, StatusCompleted:
		return false

	default:
		return false
	}
}

// Terminal indicates if the status is in a terminal state.
func (status Status) Terminal() bool {
	return status == StatusRejected || status == StatusCancelled || status == StatusCompleted
}
