package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slavemarket/internal/api"
	"slavemarket/internal/database"
	"slavemarket/internal/metrics"
	"slavemarket/internal/report"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with health and metrics servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	logger := &a.logger

	ready := readiness{db: a.db, rdb: a.rdb}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, ready, logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	if cfg.Backup.Enabled {
		backups := database.NewBackupService(a.db, cfg.Backup, cfg.BackupInterval(), logger)
		go backups.Start(ctx)
	}

	if cfg.Reports.MonthlyEnabled {
		monthly := report.NewMonthlyExporter(a.leases, cfg.Reports.Dir, cfg.Location(), logger)
		go monthly.Start(ctx)
	}

	server := api.NewHTTPServer(api.Options{
		Port:          cfg.API.Port,
		APIKey:        cfg.API.APIKey,
		RatePerSecond: cfg.API.RatePerSecond,
		Burst:         cfg.API.Burst,
	}, a.leases, ready, logger)

	logger.Info().
		Int("daily_limit_hours", cfg.Lease.DailyLimitHours).
		Str("timezone", cfg.Lease.Timezone).
		Msg("slavemarket started")
	return server.Start(ctx)
}

// readiness checks the database and, when configured, Redis.
type readiness struct {
	db  *database.DB
	rdb *redis.Client
}

func (r readiness) Ready(ctx context.Context) error {
	ctxPing, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := r.db.Ready(ctxPing); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if r.rdb != nil {
		if err := r.rdb.Ping(ctxPing).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func startHealthServer(ctx context.Context, port int, ready api.ReadinessChecker, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	api.RegisterHealth(mux, ready)
	runServer(ctx, port, mux, "health", logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	runServer(ctx, port, mux, "metrics", logger)
}

func runServer(ctx context.Context, port int, handler http.Handler, name string, logger *zerolog.Logger) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msgf("%s server error", name)
	}
}
