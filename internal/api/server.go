// Package api provides the HTTP REST API and WebSocket server for the
// HomeDeck gateway.
//
// It exposes hub management, the device directory, scenario operations,
// status snapshots and notifications to dashboards, and proxies the
// remaining hub surface through the offline cache layer.
//
// The server follows the same lifecycle pattern as the other
// components:
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

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/homedeck/homedeck/internal/command"
	"github.com/homedeck/homedeck/internal/directory"
	"github.com/homedeck/homedeck/internal/hub"
	"github.com/homedeck/homedeck/internal/infrastructure/config"
	"github.com/homedeck/homedeck/internal/infrastructure/logging"
	"github.com/homedeck/homedeck/internal/notify"
	"github.com/homedeck/homedeck/internal/offline"
	"github.com/homedeck/homedeck/internal/poller"
	"github.com/homedeck/homedeck/internal/scenario"
	"github.com/homedeck/homedeck/internal/settings"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     *config.Config
	Logger     *logging.Logger
	Hubs       *hub.Registry
	Directory  *directory.Directory
	Dispatcher *command.Dispatcher
	Scenarios  *scenario.Store
	Poller     *poller.Poller
	Notifier   *notify.Center
	Settings   *settings.Store
	Offline    *offline.Layer
	Version    string
}

// Server is the HomeDeck gateway HTTP server.
type Server struct {
	cfg        *config.Config
	logger     *logging.Logger
	hubs       *hub.Registry
	directory  *directory.Directory
	dispatcher *command.Dispatcher
	scenarios  *scenario.Store
	poller     *poller.Poller
	notifier   *notify.Center
	settings   *settings.Store
	offline    *offline.Layer
	version    string

	validate *validator.Validate
	limiter  *rate.Limiter

	server *http.Server
	cancel context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Hubs == nil {
		return nil, fmt.Errorf("hub registry is required")
	}
	if deps.Directory == nil {
		return nil, fmt.Errorf("device directory is required")
	}

	s := &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		hubs:       deps.Hubs,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		scenarios:  deps.Scenarios,
		poller:     deps.Poller,
		notifier:   deps.Notifier,
		settings:   deps.Settings,
		offline:    deps.Offline,
		version:    deps.Version,
		validate:   validator.New(),
	}

	if rl := deps.Config.Security.RateLimit; rl.Enabled {
		perSecond := rate.Limit(float64(rl.RequestsPerMinute) / 60.0)
		s.limiter = rate.NewLimiter(perSecond, rl.Burst)
	}

	return s, nil
}

// Start begins listening for HTTP connections in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	_, s.cancel = context.WithCancel(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Gateway.Host, s.cfg.Gateway.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		s.logger.Info("gateway API listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("gateway API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds
// for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("gateway API shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down gateway API: %w", err)
	}
	return nil
}
