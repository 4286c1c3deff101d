// Package server exposes a built parameter space over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Sumatoshi-tech/paramspace/pkg/alg/lru"
	"github.com/Sumatoshi-tech/paramspace/pkg/config"
	"github.com/Sumatoshi-tech/paramspace/pkg/observability"
	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
)

// ErrNoSpace is returned by New when no space is given.
var ErrNoSpace = errors.New("server: nil space")

// Deps carries the observability plumbing. Every field is optional.
type Deps struct {
	Logger         *slog.Logger
	Tracer         trace.Tracer
	Requests       *observability.RequestMetrics
	Space          *observability.SpaceMetrics
	MetricsHandler http.Handler
}

// Server serves read-only queries against one space. The space must not be
// appended to while the server runs.
type Server struct {
	name    string
	space   *paramspace.Space
	cfg     config.ServerConfig
	logger  *slog.Logger
	tracer  trace.Tracer
	reqs    *observability.RequestMetrics
	metrics *observability.SpaceMetrics
	scrape  http.Handler
	cache   *lru.Cache[rowKey, RowResponse]
	limiter *rate.Limiter
}

// rowKey identifies a cached row response.
type rowKey struct {
	index     int
	construct bool
}

// New creates a server for space. name labels the space in summaries.
func New(name string, space *paramspace.Space, cfg config.ServerConfig, deps Deps) (*Server, error) {
	if space == nil {
		return nil, ErrNoSpace
	}

	srv := &Server{
		name:    name,
		space:   space,
		cfg:     cfg,
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		reqs:    deps.Requests,
		metrics: deps.Space,
		scrape:  deps.MetricsHandler,
		limiter: newLimiter(cfg.RateLimit, cfg.RateBurst),
	}

	if cfg.CacheSize > 0 {
		srv.cache = lru.New[rowKey, RowResponse](cfg.CacheSize)
	}

	if srv.logger == nil {
		srv.logger = slog.New(slog.DiscardHandler)
	}

	if srv.tracer == nil {
		srv.tracer = noop.NewTracerProvider().Tracer("paramspace")
	}

	return srv, nil
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(s.ready))
	mux.Handle("GET /v1/space", s.limit(s.handleSpace))
	mux.Handle("GET /v1/rows", s.limit(s.handleRows))
	mux.Handle("GET /v1/rows/{index}", s.limit(s.handleRow))
	mux.Handle("POST /v1/lookup", s.limit(s.handleLookup))

	if s.scrape != nil {
		mux.Handle("GET /metrics", s.scrape)
	}

	return s.withRequestID(observability.HTTPMiddleware(s.tracer, s.reqs, mux))
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured shutdown timeout. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	unregister, err := s.metrics.ObserveRows(s.space.Len)
	if err != nil {
		_ = ln.Close()

		return err
	}

	defer func() {
		unregisterErr := unregister()
		if unregisterErr != nil {
			s.logger.Warn("unregister row gauge", "error", unregisterErr)
		}

		if s.cache != nil {
			stats := s.cache.Stats()
			s.logger.Info("row cache", "hits", stats.Hits, "misses", stats.Misses,
				"evictions", stats.Evictions, "hit_rate", stats.HitRate())
		}
	}()

	httpSrv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.InfoContext(ctx, "serving space", "addr", ln.Addr().String(), "rows", s.space.Len())

		serveErr := httpSrv.Serve(ln)
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", serveErr)
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.InfoContext(ctx, "shutting down", "timeout", s.cfg.ShutdownTimeout)

		shutdownErr := httpSrv.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			return fmt.Errorf("shutdown: %w", shutdownErr)
		}

		return nil
	})

	return group.Wait()
}

func (s *Server) ready(_ context.Context) error {
	if s.space.Len() == 0 {
		return errors.New("space has no rows")
	}

	return nil
}
