package service

import (
	"ride-booking/internal/general/logger"
	"ride-booking/internal/ports"
)

// conflictRetries bounds how many times a mutating command is retried from a
// fresh read after an optimistic-concurrency conflict.
const conflictRetries = 3

// rideService encapsulates the ride service logic and dependencies.
type rideService struct {
	logger     *logger.Logger
	uow        ports.UnitOfWork
	rideRepo   ports.RideRepository
	outboxRepo ports.OutboxRepository
}

// NewRideService creates a new instance of the RideService with the provided dependencies.
func NewRideService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rideRepo ports.RideRepository,
	outboxRepo ports.OutboxRepository,
) ports.RideService {
	return &rideService{
		logger:     logger,
		uow:        uow,
		rideRepo:   rideRepo,
		outboxRepo: outboxRepo,
	}
}
