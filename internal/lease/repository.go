package lease

import (
	"context"
	"errors"

	"slavemarket/internal/model"
)

// DateLayout is the calendar date format used in contract queries.
const DateLayout = "2006-01-02"

// ErrNotFound is returned by repositories when a master or slave does not exist.
var ErrNotFound = errors.New("not found")

// MasterRepository looks up masters.
type MasterRepository interface {
	GetMasterByID(ctx context.Context, id int64) (*model.Master, error)
}

// SlaveRepository looks up slaves.
type SlaveRepository interface {
	GetSlaveByID(ctx context.Context, id int64) (*model.Slave, error)
}

// ContractRepository returns existing contracts of a slave that have hours
// dated within [dateFrom, dateTo]. Both dates use DateLayout.
type ContractRepository interface {
	GetForSlave(ctx context.Context, slaveID int64, dateFrom, dateTo string) ([]model.LeaseContract, error)
}
