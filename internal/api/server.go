package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"slavemarket/internal/lease"
	"slavemarket/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// LeaseService is the part of service.LeaseService the API needs.
type LeaseService interface {
	Lease(ctx context.Context, req lease.Request) (*lease.Response, error)
	ContractsForSlave(ctx context.Context, slaveID int64, from, to string) ([]model.LeaseContract, error)
	Contracts(ctx context.Context, from, to string) ([]model.LeaseContract, error)
}

// ReadinessChecker reports whether backing storage is reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

type Options struct {
	Port          int
	APIKey        string
	RatePerSecond float64
	Burst         int
}

// HTTPServer exposes lease operations as JSON over HTTP.
type HTTPServer struct {
	leases  LeaseService
	ready   ReadinessChecker
	apiKey  string
	limiter *clientLimiter
	server  *http.Server
	logger  *zerolog.Logger
}

func NewHTTPServer(opts Options, leases LeaseService, ready ReadinessChecker, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	s := &HTTPServer{
		leases: leases,
		ready:  ready,
		apiKey: opts.APIKey,
		logger: logger,
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = newClientLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/leases", s.protect(http.HandlerFunc(s.handleCreateLease)))
	mux.Handle("GET /api/v1/slaves/{id}/contracts", s.protect(http.HandlerFunc(s.handleSlaveContracts)))
	mux.Handle("GET /api/v1/reports/contracts.xlsx", s.protect(http.HandlerFunc(s.handleContractsReport)))
	RegisterHealth(mux, ready)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// protect applies API key auth and per-client rate limiting.
func (s *HTTPServer) protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-Api-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if s.limiter != nil && !s.limiter.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RegisterHealth adds /healthz and /readyz to mux.
func RegisterHealth(mux *http.ServeMux, ready ReadinessChecker) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready.Ready(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}

// clientKey identifies the caller by remote host. Request headers are never
// used since the caller controls them.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
