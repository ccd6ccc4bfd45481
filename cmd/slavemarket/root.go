package main

import (
	"os"
	"strings"
	"time"

	"slavemarket/internal/cache"
	"slavemarket/internal/config"
	"slavemarket/internal/database"
	"slavemarket/internal/events"
	"slavemarket/internal/lease"
	"slavemarket/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "slavemarket",
		Short:         "Slave lease service: hourly leases with daily caps and VIP precedence",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $SLAVEMARKET_CONFIG_PATH or configs/config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newLeaseCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newMasterCmd())
	root.AddCommand(newSlaveCmd())
	return root
}

// app holds the collaborators shared by all commands.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *database.DB
	rdb    *redis.Client
	bus    *events.EventBus
	leases *service.LeaseService
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, db: db, bus: events.NewEventBus()}
	subscribeEventLog(a.bus, &a.logger)

	var masters lease.MasterRepository = db
	var slaves lease.SlaveRepository = db
	if ttl := cfg.CacheTTL(); ttl > 0 {
		var store cache.Store
		if cfg.Redis.Address != "" {
			a.rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
			store = cache.NewRedisStore(a.rdb, ttl)
		} else {
			store = cache.NewMemoryStore(ttl)
		}
		ref := cache.NewReference(db, db, store, &a.logger)
		masters, slaves = ref, ref
	}

	op := lease.NewOperation(db, masters, slaves, lease.Config{
		DailyLimitHours: cfg.Lease.DailyLimitHours,
		Location:        cfg.Location(),
	}, &a.logger)
	a.leases = service.NewLeaseService(op, db, a.bus, &a.logger)
	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.db.Close()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Log.Pretty {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
