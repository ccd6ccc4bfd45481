package cache

import (
	"context"
	"fmt"

	"slavemarket/internal/lease"
	"slavemarket/internal/model"

	"github.com/rs/zerolog"
)

// Reference is a read-through cache for masters and slaves. Contracts are
// never cached: conflict checks must see the latest state.
type Reference struct {
	masters lease.MasterRepository
	slaves  lease.SlaveRepository
	store   Store
	logger  *zerolog.Logger
}

func NewReference(masters lease.MasterRepository, slaves lease.SlaveRepository, store Store, logger *zerolog.Logger) *Reference {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Reference{masters: masters, slaves: slaves, store: store, logger: logger}
}

func (r *Reference) GetMasterByID(ctx context.Context, id int64) (*model.Master, error) {
	key := fmt.Sprintf("master:%d", id)
	var m model.Master
	if r.store.Get(ctx, key, &m) {
		return &m, nil
	}

	got, err := r.masters.GetMasterByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store.Set(ctx, key, got)
	r.logger.Debug().Str("key", key).Msg("cached")
	return got, nil
}

func (r *Reference) GetSlaveByID(ctx context.Context, id int64) (*model.Slave, error) {
	key := fmt.Sprintf("slave:%d", id)
	var s model.Slave
	if r.store.Get(ctx, key, &s) {
		return &s, nil
	}

	got, err := r.slaves.GetSlaveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store.Set(ctx, key, got)
	r.logger.Debug().Str("key", key).Msg("cached")
	return got, nil
}
