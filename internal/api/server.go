// Package api provides the HTTP REST API and WebSocket server for Argus Core.
//
// It exposes the device inventory, connector configuration, site/space/zone
// management, and on-demand sync to operator UIs, plus a WebSocket feed of
// live device-state changes.
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

	"github.com/argus-security/argus-core/internal/alarm"
	"github.com/argus-security/argus-core/internal/connector"
	"github.com/argus-security/argus-core/internal/device"
	"github.com/argus-security/argus-core/internal/infrastructure/config"
	"github.com/argus-security/argus-core/internal/infrastructure/logging"
	"github.com/argus-security/argus-core/internal/location"
	"github.com/argus-security/argus-core/internal/statestore"
	"github.com/argus-security/argus-core/internal/syncer"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// SyncRunner triggers a full device synchronisation. Satisfied by
// syncer.Service; declared here so handlers can be tested against a stub.
type SyncRunner interface {
	SyncAll(ctx context.Context) (*syncer.Result, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	WS           config.WebSocketConfig
	Security     config.SecurityConfig
	Logger       *logging.Logger
	Store        *statestore.Store
	Devices      device.Repository
	Connectors   connector.Repository
	Locations    location.Repository
	Zones        alarm.Repository
	Alarms       *alarm.Service
	Associations device.AssociationRepository
	Syncer       SyncRunner
	Version      string
}

// Server is the HTTP API server for Argus Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	secCfg       config.SecurityConfig
	logger       *logging.Logger
	store        *statestore.Store
	devices      device.Repository
	connectors   connector.Repository
	locations    location.Repository
	zones        alarm.Repository
	alarms       *alarm.Service
	associations device.AssociationRepository
	syncer       SyncRunner
	version      string
	server       *http.Server
	hub          *Hub
	cancel       context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device repository is required")
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		secCfg:       deps.Security,
		logger:       deps.Logger,
		store:        deps.Store,
		devices:      deps.Devices,
		connectors:   deps.Connectors,
		locations:    deps.Locations,
		zones:        deps.Zones,
		alarms:       deps.Alarms,
		associations: deps.Associations,
		syncer:       deps.Syncer,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, registers a state-store subscriber that
// broadcasts device-state changes to connected clients, and launches the
// HTTP listener in a background goroutine. The server can be stopped
// with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Every state-store mutation (live event or sync refresh) fans out
	// to WebSocket subscribers.
	s.store.Subscribe(func(key string, info statestore.DeviceStateInfo) {
		s.hub.Broadcast(channelDeviceState, deviceStateMessage(key, info))
	})

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
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
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
