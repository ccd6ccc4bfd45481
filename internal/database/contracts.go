package database

import (
	"context"
	"fmt"
	"time"

	"slavemarket/internal/model"

	"github.com/google/uuid"
)

const contractColumns = `
	c.id, c.price, c.created_at,
	m.id, m.name, m.is_vip,
	s.id, s.name, s.price_per_hour`

// SaveContract stores a resolved contract with its hours, assigning an ID
// and creation time when missing.
func (db *DB) SaveContract(ctx context.Context, c *model.LeaseContract) error {
	if c == nil {
		return fmt.Errorf("contract is nil")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO lease_contracts (id, master_id, slave_id, price, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Master.ID, c.Slave.ID, c.Price, c.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO lease_hours (contract_id, position, hour_key, date) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare hours: %w", err)
	}
	defer stmt.Close()

	for i, h := range c.Hours {
		if _, err := stmt.ExecContext(ctx, c.ID, i, h.String(), h.Date()); err != nil {
			return fmt.Errorf("insert hour %s: %w", h, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit contract: %w", err)
	}
	db.logger.Debug().Str("contract_id", c.ID).Int("hours", len(c.Hours)).Msg("contract saved")
	return nil
}

// GetForSlave returns the slave's contracts with at least one hour dated
// within [dateFrom, dateTo].
func (db *DB) GetForSlave(ctx context.Context, slaveID int64, dateFrom, dateTo string) ([]model.LeaseContract, error) {
	return db.queryContracts(ctx, `
		SELECT`+contractColumns+`
		FROM lease_contracts c
		JOIN masters m ON m.id = c.master_id
		JOIN slaves s ON s.id = c.slave_id
		WHERE c.slave_id = ?
		AND c.id IN (SELECT contract_id FROM lease_hours WHERE date >= ? AND date <= ?)
		ORDER BY c.created_at, c.id`,
		slaveID, dateFrom, dateTo,
	)
}

// ListContracts returns contracts of all slaves with hours within [dateFrom, dateTo].
func (db *DB) ListContracts(ctx context.Context, dateFrom, dateTo string) ([]model.LeaseContract, error) {
	return db.queryContracts(ctx, `
		SELECT`+contractColumns+`
		FROM lease_contracts c
		JOIN masters m ON m.id = c.master_id
		JOIN slaves s ON s.id = c.slave_id
		WHERE c.id IN (SELECT contract_id FROM lease_hours WHERE date >= ? AND date <= ?)
		ORDER BY c.created_at, c.id`,
		dateFrom, dateTo,
	)
}

func (db *DB) queryContracts(ctx context.Context, query string, args ...interface{}) ([]model.LeaseContract, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}

	var contracts []model.LeaseContract
	for rows.Next() {
		var c model.LeaseContract
		if err := rows.Scan(
			&c.ID, &c.Price, &c.CreatedAt,
			&c.Master.ID, &c.Master.Name, &c.Master.VIP,
			&c.Slave.ID, &c.Slave.Name, &c.Slave.PricePerHour,
		); err != nil {
			rows.Close()
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range contracts {
		hours, err := db.contractHours(ctx, contracts[i].ID)
		if err != nil {
			return nil, err
		}
		contracts[i].Hours = hours
	}
	return contracts, nil
}

func (db *DB) contractHours(ctx context.Context, contractID string) ([]model.LeaseHour, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT hour_key FROM lease_hours WHERE contract_id = ? ORDER BY position", contractID)
	if err != nil {
		return nil, fmt.Errorf("query hours: %w", err)
	}
	defer rows.Close()

	var hours []model.LeaseHour
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		h, err := model.ParseLeaseHour(key)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", contractID, err)
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}
