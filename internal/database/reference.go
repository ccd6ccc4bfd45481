package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"slavemarket/internal/lease"
	"slavemarket/internal/model"
)

// CreateMaster inserts a master. A zero ID is assigned by the database.
func (db *DB) CreateMaster(ctx context.Context, m *model.Master) error {
	if m == nil {
		return fmt.Errorf("master is nil")
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO masters (id, name, is_vip) VALUES (NULLIF(?, 0), ?, ?)",
		m.ID, m.Name, m.VIP,
	)
	if err != nil {
		return fmt.Errorf("insert master: %w", err)
	}
	if m.ID == 0 {
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("master id: %w", err)
		}
	}
	return nil
}

// GetMasterByID returns lease.ErrNotFound when no such master exists.
func (db *DB) GetMasterByID(ctx context.Context, id int64) (*model.Master, error) {
	var m model.Master
	err := db.QueryRowContext(ctx,
		"SELECT id, name, is_vip FROM masters WHERE id = ?", id,
	).Scan(&m.ID, &m.Name, &m.VIP)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("master %d: %w", id, lease.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateSlave inserts a slave. A zero ID is assigned by the database.
func (db *DB) CreateSlave(ctx context.Context, s *model.Slave) error {
	if s == nil {
		return fmt.Errorf("slave is nil")
	}
	if s.PricePerHour < 0 {
		return fmt.Errorf("slave price must not be negative: %v", s.PricePerHour)
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO slaves (id, name, price_per_hour) VALUES (NULLIF(?, 0), ?, ?)",
		s.ID, s.Name, s.PricePerHour,
	)
	if err != nil {
		return fmt.Errorf("insert slave: %w", err)
	}
	if s.ID == 0 {
		if s.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("slave id: %w", err)
		}
	}
	return nil
}

// GetSlaveByID returns lease.ErrNotFound when no such slave exists.
func (db *DB) GetSlaveByID(ctx context.Context, id int64) (*model.Slave, error) {
	var s model.Slave
	err := db.QueryRowContext(ctx,
		"SELECT id, name, price_per_hour FROM slaves WHERE id = ?", id,
	).Scan(&s.ID, &s.Name, &s.PricePerHour)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slave %d: %w", id, lease.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
