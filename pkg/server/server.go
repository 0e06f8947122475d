package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/rdl/pkg/checker"
	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
	"mercator-hq/rdl/pkg/telemetry/health"
	"mercator-hq/rdl/pkg/telemetry/metrics"
	"mercator-hq/rdl/pkg/telemetry/tracing"
)

// Options configures a Server. Checker is required.
type Options struct {
	Config  config.ServerConfig
	Checker *checker.Checker

	Health      *health.Checker
	Metrics     *metrics.Collector
	MetricsPath string
	Tracer      *tracing.Tracer
	Logger      *slog.Logger

	// History enables GET /v1/history.
	History      history.Storage
	HistoryQuery config.QueryConfig

	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP API.
type Server struct {
	opts    Options
	logger  *slog.Logger
	keys    *keyValidator
	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	running    bool
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Tracer == nil {
		opts.Tracer = tracing.Nop()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config.ListenAddress == "" {
		opts.Config.ListenAddress = config.DefaultListenAddress
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = config.DefaultMetricsPath
	}
	if opts.HistoryQuery.DefaultLimit <= 0 {
		opts.HistoryQuery.DefaultLimit = config.DefaultQueryDefaultLimit
	}
	if opts.HistoryQuery.MaxLimit <= 0 {
		opts.HistoryQuery.MaxLimit = config.DefaultQueryMaxLimit
	}

	s := &Server{opts: opts, logger: opts.Logger.With("component", "server")}
	if len(opts.Config.APIKeys) > 0 {
		s.keys = newKeyValidator(opts.Config.APIKeys)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	h := &handlers{
		checker:      s.opts.Checker,
		history:      s.opts.History,
		query:        s.opts.HistoryQuery,
		maxBodyBytes: s.maxBodyBytes(),
		logger:       s.logger,
	}

	s.handle(mux, "POST /v1/parse", "parse", http.HandlerFunc(h.parse))
	s.handle(mux, "POST /v1/check/{schema}", "check", http.HandlerFunc(h.check))
	s.handle(mux, "GET /v1/schemas", "schemas", http.HandlerFunc(h.schemas))
	if s.opts.History != nil {
		s.handle(mux, "GET /v1/history", "history", http.HandlerFunc(h.listHistory))
	}

	if s.opts.Health != nil {
		s.opts.Health.Register(mux, s.opts.Version, s.opts.Commit, s.opts.BuildTime)
	}
	if s.opts.Metrics != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger, handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger, handler)
	return handler
}

func (s *Server) handle(mux *http.ServeMux, pattern, route string, h http.Handler) {
	if s.keys != nil {
		h = authMiddleware(s.keys, s.logger, h)
	}
	h = s.opts.Metrics.Instrument(route, h)
	h = s.opts.Tracer.HTTPMiddleware(route, h)
	mux.Handle(pattern, h)
}

func (s *Server) maxBodyBytes() int64 {
	if s.opts.Config.MaxBodyBytes > 0 {
		return s.opts.Config.MaxBodyBytes
	}
	return config.DefaultParserMaxSize
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server is already running")
	}
	if s.opts.Config.TLS.Enabled {
		tc, err := tlsConfig(ctx, s.opts.Config.TLS, s.logger)
		if err != nil {
			s.mu.Unlock()
			ln.Close()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		ln = tls.NewListener(ln, tc)
	}
	s.running = true
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.Config.ReadTimeout,
		WriteTimeout: s.opts.Config.WriteTimeout,
		IdleTimeout:  s.opts.Config.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String(), "tls", s.opts.Config.TLS.Enabled)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.WithoutCancel(ctx))
	case err, ok := <-errCh:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		if ok {
			return err
		}
		return nil
	}
}

// Shutdown stops accepting connections and waits for in-flight requests,
// up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	running := s.running
	s.running = false
	s.mu.Unlock()
	if !running || srv == nil {
		return nil
	}

	timeout := s.opts.Config.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("shutting down", "timeout", timeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
