package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slavemarket/internal/model"

	"github.com/rs/zerolog"
)

// DefaultDailyLimitHours is how many hours a slave may work per day.
const DefaultDailyLimitHours = 16

// Config tunes an Operation.
type Config struct {
	DailyLimitHours int
	Location        *time.Location
}

// Operation resolves lease requests against existing contracts. It keeps no
// state between calls; callers serialise concurrent requests for one slave.
type Operation struct {
	contracts ContractRepository
	masters   MasterRepository
	slaves    SlaveRepository
	limit     int
	loc       *time.Location
	logger    *zerolog.Logger
}

// NewOperation creates an operation. Zero config values fall back to defaults.
func NewOperation(
	contracts ContractRepository,
	masters MasterRepository,
	slaves SlaveRepository,
	cfg Config,
	logger *zerolog.Logger,
) *Operation {
	if cfg.DailyLimitHours <= 0 {
		cfg.DailyLimitHours = DefaultDailyLimitHours
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Operation{
		contracts: contracts,
		masters:   masters,
		slaves:    slaves,
		limit:     cfg.DailyLimitHours,
		loc:       cfg.Location,
		logger:    logger,
	}
}

// Run resolves req. Domain failures are reported in the Response; the error
// return is reserved for repository failures.
func (o *Operation) Run(ctx context.Context, req Request) (*Response, error) {
	resp := &Response{}

	from, err := ParseTime(req.TimeFrom, o.loc)
	if err != nil {
		resp.addError(invalidTime(req.TimeFrom, err))
	}
	to, err := ParseTime(req.TimeTo, o.loc)
	if err != nil {
		resp.addError(invalidTime(req.TimeTo, err))
	}
	if len(resp.Errors) > 0 {
		return resp, nil
	}
	from, to = wallClock(from), wallClock(to)

	if from.Equal(to) {
		resp.addError(invalidRange())
		return resp, nil
	}
	if from.After(to) {
		from, to = to, from
	}

	master, err := o.masters.GetMasterByID(ctx, req.MasterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			resp.addError(notFound("master", req.MasterID, err))
			return resp, nil
		}
		return nil, fmt.Errorf("get master %d: %w", req.MasterID, err)
	}
	slave, err := o.slaves.GetSlaveByID(ctx, req.SlaveID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			resp.addError(notFound("slave", req.SlaveID, err))
			return resp, nil
		}
		return nil, fmt.Errorf("get slave %d: %w", req.SlaveID, err)
	}

	acc := &accrual{master: master, slave: slave}
	for _, seg := range SplitDays(from, to) {
		if err := o.processSegment(ctx, seg, acc, resp); err != nil {
			return nil, err
		}
	}

	if len(acc.conflicts) > 0 {
		resp.addError(slaveBusy(slave, acc.conflicts))
	}
	if len(resp.Errors) > 0 {
		o.logger.Debug().
			Int64("master_id", master.ID).
			Int64("slave_id", slave.ID).
			Strs("errors", resp.Messages()).
			Msg("lease rejected")
		return resp, nil
	}

	resp.Contract = model.NewLeaseContract(*master, *slave, acc.price, acc.hours)
	o.logger.Debug().
		Int64("master_id", master.ID).
		Int64("slave_id", slave.ID).
		Int("hours", len(acc.hours)).
		Float64("price", acc.price).
		Msg("lease resolved")
	return resp, nil
}

// accrual collects the outcome of one Run across segments.
type accrual struct {
	master    *model.Master
	slave     *model.Slave
	price     float64
	hours     []model.LeaseHour
	conflicts []model.LeaseHour
}

func (o *Operation) processSegment(ctx context.Context, seg Segment, acc *accrual, resp *Response) error {
	existing, err := o.contracts.GetForSlave(ctx, acc.slave.ID, seg.DateFrom, seg.DateTo)
	if err != nil {
		return fmt.Errorf("get contracts for slave %d (%s..%s): %w", acc.slave.ID, seg.DateFrom, seg.DateTo, err)
	}

	leased := 0
	for i := range existing {
		leased += existing[i].HoursBetween(seg.DateFrom, seg.DateTo)
	}

	// Whole days skip the cap check and are billed at the capped rate below.
	if seg.Hours+leased > o.limit && seg.Hours < HoursPerDay {
		resp.addError(workHourLimitExceeded(acc.slave, o.limit))
		return nil
	}

	acc.price += float64(min(seg.Hours, o.limit)) * acc.slave.PricePerHour

	for i := 0; i < seg.Hours; i++ {
		hour := model.NewLeaseHour(seg.HourAt(i))
		acc.hours = append(acc.hours, hour)

		for _, contract := range existing {
			if acc.master.OutranksHolder(contract.Master) {
				continue
			}
			for _, held := range contract.Hours {
				if hour.Equal(held) {
					acc.conflicts = append(acc.conflicts, held)
				}
			}
		}
	}
	return nil
}
