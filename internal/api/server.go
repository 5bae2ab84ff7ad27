// Package api serves a read-only HTTP view of the sensing pipeline.
//
// It exposes the latest sensed values per entity, the registry topology,
// a health endpoint and the Prometheus metrics. There are no write
// endpoints; the pipeline is driven by its inputs only.
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensing/internal/model"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// healthCheckTimeout bounds each component check made by the health endpoint.
const healthCheckTimeout = 2 * time.Second

// HealthChecker is a backing service the health endpoint checks.
// The broker, InfluxDB and description store clients satisfy it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Registry *entity.Registry
	Models   *model.Collection
	Version  string

	// HealthChecks maps component names to optional backing services.
	// Nil entries are ignored.
	HealthChecks map[string]HealthChecker
}

// Server is the HTTP status server.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	registry *entity.Registry
	models   *model.Collection
	version  string
	checks   map[string]HealthChecker
	started  time.Time
	server   *http.Server
	listener net.Listener
}

// New creates a server. It does not listen until Start is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if deps.Models == nil {
		return nil, fmt.Errorf("model collection is required")
	}

	checks := make(map[string]HealthChecker, len(deps.HealthChecks))
	for name, c := range deps.HealthChecks {
		if c != nil {
			checks[name] = c
		}
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		registry: deps.Registry,
		models:   deps.Models,
		version:  deps.Version,
		checks:   checks,
		started:  time.Now(),
	}, nil
}

// Start binds the listen address and serves in a background goroutine.
// A bind failure (port in use, bad address) is returned synchronously.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
