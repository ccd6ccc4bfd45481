package service

import (
	"context"
	"fmt"
	"sync"

	"slavemarket/internal/events"
	"slavemarket/internal/lease"
	"slavemarket/internal/metrics"
	"slavemarket/internal/model"

	"github.com/rs/zerolog"
)

// Resolver resolves a lease request into a contract or errors.
type Resolver interface {
	Run(ctx context.Context, req lease.Request) (*lease.Response, error)
}

// ContractStore persists resolved contracts.
type ContractStore interface {
	SaveContract(ctx context.Context, c *model.LeaseContract) error
	GetForSlave(ctx context.Context, slaveID int64, dateFrom, dateTo string) ([]model.LeaseContract, error)
	ListContracts(ctx context.Context, dateFrom, dateTo string) ([]model.LeaseContract, error)
}

// EventPublisher publishes lease outcomes.
type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}

// RejectedPayload is published with events.LeaseRejected.
type RejectedPayload struct {
	MasterID int64    `json:"master_id"`
	SlaveID  int64    `json:"slave_id"`
	Errors   []string `json:"errors"`
}

// LeaseService owns lease attempts: one attempt per slave at a time, and only
// successful contracts are stored.
type LeaseService struct {
	resolver Resolver
	store    ContractStore
	bus      EventPublisher
	locks    *slaveLocks
	logger   *zerolog.Logger
}

func NewLeaseService(resolver Resolver, store ContractStore, bus EventPublisher, logger *zerolog.Logger) *LeaseService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &LeaseService{
		resolver: resolver,
		store:    store,
		bus:      bus,
		locks:    newSlaveLocks(),
		logger:   logger,
	}
}

// Lease resolves req and stores the contract on success.
func (s *LeaseService) Lease(ctx context.Context, req lease.Request) (*lease.Response, error) {
	unlock := s.locks.lock(req.SlaveID)
	defer unlock()

	resp, err := s.resolver.Run(ctx, req)
	if err != nil {
		metrics.IncLeaseRequest("failed")
		s.logger.Error().Err(err).Int64("slave_id", req.SlaveID).Msg("lease failed")
		return nil, err
	}

	if !resp.OK() {
		metrics.IncLeaseRequest("rejected")
		for _, e := range resp.Errors {
			metrics.IncLeaseError(string(e.Kind))
		}
		s.publish(events.LeaseRejected, RejectedPayload{
			MasterID: req.MasterID,
			SlaveID:  req.SlaveID,
			Errors:   resp.Messages(),
		})
		s.logger.Info().
			Int64("master_id", req.MasterID).
			Int64("slave_id", req.SlaveID).
			Strs("errors", resp.Messages()).
			Msg("lease rejected")
		return resp, nil
	}

	if err := s.store.SaveContract(ctx, resp.Contract); err != nil {
		metrics.IncLeaseRequest("failed")
		return nil, fmt.Errorf("save contract: %w", err)
	}

	metrics.IncLeaseRequest("created")
	metrics.ObserveLeasePrice(resp.Contract.Price)
	s.publish(events.LeaseCreated, resp.Contract)
	s.logger.Info().
		Str("contract_id", resp.Contract.ID).
		Int64("master_id", resp.Contract.Master.ID).
		Int64("slave_id", resp.Contract.Slave.ID).
		Int("hours", len(resp.Contract.Hours)).
		Float64("price", resp.Contract.Price).
		Msg("lease created")
	return resp, nil
}

// ContractsForSlave lists stored contracts of a slave within [from, to].
func (s *LeaseService) ContractsForSlave(ctx context.Context, slaveID int64, from, to string) ([]model.LeaseContract, error) {
	return s.store.GetForSlave(ctx, slaveID, from, to)
}

// Contracts lists stored contracts of all slaves within [from, to].
func (s *LeaseService) Contracts(ctx context.Context, from, to string) ([]model.LeaseContract, error) {
	return s.store.ListContracts(ctx, from, to)
}

func (s *LeaseService) publish(eventType string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish event")
	}
}

// slaveLocks hands out one mutex per slave and forgets it once unused.
type slaveLocks struct {
	mu    sync.Mutex
	locks map[int64]*slaveLock
}

type slaveLock struct {
	mu   sync.Mutex
	refs int
}

func newSlaveLocks() *slaveLocks {
	return &slaveLocks{locks: make(map[int64]*slaveLock)}
}

func (l *slaveLocks) lock(slaveID int64) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[slaveID]
	if !ok {
		entry = &slaveLock{}
		l.locks[slaveID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, slaveID)
		}
		l.mu.Unlock()
	}
}

func (l *slaveLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
