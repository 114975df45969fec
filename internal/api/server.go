// Package api provides the HTTP REST API and WebSocket endpoint for Lumen Core.
//
// It exposes owner-facing operations (login, device listing, energy transfer,
// transfer history), the device control surface (power on/off), and the
// realtime channel upgrade that devices use for auth, heartbeat, and status.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
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
	"net/http"
	"time"

	"github.com/lumenfleet/lumen-core/internal/auth"
	"github.com/lumenfleet/lumen-core/internal/device"
	"github.com/lumenfleet/lumen-core/internal/energy"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/config"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/database"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/influxdb"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/logging"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumenfleet/lumen-core/internal/realtime"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Store    *device.Store
	Oracle   *device.Oracle
	Sessions *realtime.Table
	Realtime *realtime.Handler
	Energy   *energy.Service
	Ledger   energy.Ledger
	Owners   auth.OwnerRepository
	MQTT     *mqtt.Client     // optional
	Influx   *influxdb.Client // optional
	DB       *database.DB     // optional, for metrics only
	Version  string
}

// Server is the HTTP API server for Lumen Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	store    *device.Store
	oracle   *device.Oracle
	sessions *realtime.Table
	realtime *realtime.Handler
	energy   *energy.Service
	ledger   energy.Ledger
	owners   auth.OwnerRepository
	mqtt     *mqtt.Client
	influx   *influxdb.Client
	db       *database.DB
	version  string

	server    *http.Server
	startTime time.Time
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("device store is required")
	}
	if deps.Oracle == nil {
		return nil, fmt.Errorf("presence oracle is required")
	}
	if deps.Sessions == nil || deps.Realtime == nil {
		return nil, fmt.Errorf("realtime session table and handler are required")
	}
	if deps.Energy == nil {
		return nil, fmt.Errorf("energy service is required")
	}
	if deps.Owners == nil {
		return nil, fmt.Errorf("owner repository is required")
	}
	// MQTT, InfluxDB, and the DB handle are optional; endpoints that report
	// on them degrade gracefully when absent.

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		store:     deps.Store,
		oracle:    deps.Oracle,
		sessions:  deps.Sessions,
		realtime:  deps.Realtime,
		energy:    deps.Energy,
		ledger:    deps.Ledger,
		owners:    deps.Owners,
		mqtt:      deps.MQTT,
		influx:    deps.Influx,
		db:        deps.DB,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
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

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
