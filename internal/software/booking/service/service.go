package service

import (
	"time"

	"ride-booking/internal/general/logger"
	"ride-booking/internal/ports"
)

// conflictRetries bounds how many times a mutating command is retried from a
// fresh read after an optimistic-concurrency conflict.
const conflictRetries = 3

// bookingService coordinates the booking lifecycle and the cross-service
// seat-reservation saga.
type bookingService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	bookingRepo ports.BookingRepository
	outboxRepo  ports.OutboxRepository
	rideClient  ports.RideClient
	userClient  ports.UserClient

	rpcTimeout           time.Duration
	compensationAttempts int
	compensationBackoff  time.Duration
}

// Options bundles the saga tuning knobs taken from config.
type Options struct {
	RPCTimeout           time.Duration
	CompensationAttempts int
	CompensationBackoff  time.Duration
}

// NewBookingService creates a new instance of the BookingService with the provided dependencies.
func NewBookingService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	bookingRepo ports.BookingRepository,
	outboxRepo ports.OutboxRepository,
	rideClient ports.RideClient,
	userClient ports.UserClient,
	opts Options,
) ports.BookingService {
	return &bookingService{
		logger:               logger,
		uow:                  uow,
		bookingRepo:          bookingRepo,
		outboxRepo:           outboxRepo,
		rideClient:           rideClient,
		userClient:           userClient,
		rpcTimeout:           opts.RPCTimeout,
		compensationAttempts: opts.CompensationAttempts,
		compensationBackoff:  opts.CompensationBackoff,
	}
}
