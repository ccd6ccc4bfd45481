package lease

import (
	"context"

	"slavemarket/internal/model"

	"github.com/stretchr/testify/mock"
)

type mockContracts struct {
	mock.Mock
}

func (m *mockContracts) GetForSlave(ctx context.Context, slaveID int64, dateFrom, dateTo string) ([]model.LeaseContract, error) {
	args := m.Called(ctx, slaveID, dateFrom, dateTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaseContract), args.Error(1)
}

type fakeMasters map[int64]model.Master

func (f fakeMasters) GetMasterByID(_ context.Context, id int64) (*model.Master, error) {
	m, ok := f[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

type fakeSlaves map[int64]model.Slave

func (f fakeSlaves) GetSlaveByID(_ context.Context, id int64) (*model.Slave, error) {
	s, ok := f[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func makeMasters(masters ...model.Master) fakeMasters {
	f := make(fakeMasters)
	for _, m := range masters {
		f[m.ID] = m
	}
	return f
}

func makeSlaves(slaves ...model.Slave) fakeSlaves {
	f := make(fakeSlaves)
	for _, s := range slaves {
		f[s.ID] = s
	}
	return f
}

func hours(keys ...string) []model.LeaseHour {
	out := make([]model.LeaseHour, len(keys))
	for i, k := range keys {
		out[i] = model.MustLeaseHour(k)
	}
	return out
}

func hourKeys(hs []model.LeaseHour) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.String()
	}
	return out
}
