// Package api provides the HTTP REST API for the rack dashboard.
//
// It exposes device, rack, model asset, user and audit endpoints to the
// admin UI. The server follows the lifecycle pattern:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/asset"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/audit"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/auth"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/device"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/config"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum wait for in-flight requests
// during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Devices   *device.Service
	Assets    *asset.Manager
	Users     auth.UserRepository
	AuditRepo audit.Repository
	Version   string
}

// Server is the dashboard's HTTP API server.
type Server struct {
	cfg       config.APIConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	devices   *device.Service
	assets    *asset.Manager
	users     auth.UserRepository
	auditRepo audit.Repository
	auditCh   chan *audit.Entry
	version   string
	server    *http.Server
	cancel    context.CancelFunc
}

// New creates an API server with the given dependencies.
// The server is not started until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device service is required")
	}
	if deps.Assets == nil {
		return nil, fmt.Errorf("asset manager is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}

	s := &Server{
		cfg:       deps.Config,
		secCfg:    deps.Security,
		logger:    deps.Logger.With("component", "api"),
		devices:   deps.Devices,
		assets:    deps.Assets,
		users:     deps.Users,
		auditRepo: deps.AuditRepo,
		version:   deps.Version,
	}
	if s.auditRepo != nil {
		s.auditCh = make(chan *audit.Entry, auditChanSize)
	}
	return s, nil
}

// Start begins listening for HTTP connections in a background
// goroutine. The audit drain goroutine is started alongside it.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.auditCh != nil {
		go s.drainAudit(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	s.logger.Info("api server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the server, waiting for in-flight
// requests up to the shutdown timeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("api server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	return nil
}
