package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it without inspecting
// messages. The kind travels across service boundaries in error responses.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindRuleViolation       Kind = "RULE_VIOLATION"
	KindCapacityConflict    Kind = "CAPACITY_CONFLICT"
	KindConcurrencyConflict Kind = "CONCURRENCY_CONFLICT"
	KindRemoteFailure       Kind = "REMOTE_FAILURE"
	KindPublishFailure      Kind = "PUBLISH_FAILURE"
	KindInternal            Kind = "INTERNAL"
)

// Error is a kinded error. It wraps the underlying cause so errors.Is/As
// still reach domain sentinels.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func NotFound(msg string, cause error) *Error { return newError(KindNotFound, msg, cause) }
func Rule(msg string, cause error) *Error { return newError(KindRuleViolation, msg, cause) }
func Capacity(msg string, cause error) *Error { return newError(KindCapacityConflict, msg, cause) }
func Conflict(msg string, cause error) *Error { return newError(KindConcurrencyConflict, msg, cause) }
func Remote(msg string, cause error) *Error { return newError(KindRemoteFailure, msg, cause) }
func Publish(msg string, cause error) *Error { return newError(KindPublishFailure, msg, cause) }
func Internal(msg string, cause error) *Error { return newError(KindInternal, msg, cause) }

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ParseKind maps a wire string back onto a known kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindNotFound, KindRuleViolation, KindCapacityConflict,
		KindConcurrencyConflict, KindRemoteFailure, KindPublishFailure, KindInternal:
		return Kind(s), true
	}
	return "", false
}
