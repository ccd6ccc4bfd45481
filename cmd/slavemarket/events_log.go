package main

import (
	"slavemarket/internal/events"
	"slavemarket/internal/service"

	"github.com/rs/zerolog"
)

// subscribeEventLog writes lease outcomes to the log.
func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	bus.Subscribe(events.LeaseCreated, func(e events.Event) error {
		logger.Debug().Int64("event_id", e.ID).RawJSON("contract", e.Payload).Msg("event lease.created")
		return nil
	})
	bus.Subscribe(events.LeaseRejected, func(e events.Event) error {
		var p service.RejectedPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		logger.Info().
			Int64("event_id", e.ID).
			Int64("master_id", p.MasterID).
			Int64("slave_id", p.SlaveID).
			Strs("errors", p.Errors).
			Msg("event lease.rejected")
		return nil
	})
}
