package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps sql.DB and implements the lease repositories.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS masters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			is_vip BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS slaves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price_per_hour REAL NOT NULL DEFAULT 0 CHECK (price_per_hour >= 0),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS lease_contracts (
			id TEXT PRIMARY KEY,
			master_id INTEGER NOT NULL,
			slave_id INTEGER NOT NULL,
			price REAL NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (master_id) REFERENCES masters(id),
			FOREIGN KEY (slave_id) REFERENCES slaves(id)
		)`,

		// One row per leased hour; position keeps insertion order.
		`CREATE TABLE IF NOT EXISTS lease_hours (
			contract_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			hour_key TEXT NOT NULL,
			date TEXT NOT NULL,
			PRIMARY KEY (contract_id, position),
			FOREIGN KEY (contract_id) REFERENCES lease_contracts(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_lease_contracts_slave ON lease_contracts(slave_id)`,
		`CREATE INDEX IF NOT EXISTS idx_lease_hours_date ON lease_hours(date, contract_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// Ready checks the connection with a short deadline.
func (db *DB) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
