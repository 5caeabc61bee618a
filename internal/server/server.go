// Package server exposes layout computation and snapshot management over
// HTTP. It is the deployment surface for orbit: stateless layout requests
// are cached by content key, and snapshots live in the configured store.
package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/orbit/pkg/cache"
	"github.com/matzehuels/orbit/pkg/config"
	"github.com/matzehuels/orbit/pkg/layout"
	"github.com/matzehuels/orbit/pkg/store"
)

// Options wires the server's collaborators.
type Options struct {
	// Logger receives request and lifecycle logs. Defaults to discard.
	Logger *log.Logger

	// Store persists snapshots. Defaults to an in-memory store.
	Store store.Store

	// Cache holds layout results. Defaults to a null cache.
	Cache cache.Cache

	// Keyer generates cache keys. Defaults to the standard keyer.
	Keyer cache.Keyer

	// Layout tunes relaxation for server-side layout requests.
	Layout layout.Options

	// Server carries the listen address and timeouts.
	Server config.Server
}

// Server is the orbit HTTP API.
type Server struct {
	logger  *log.Logger
	store   store.Store
	cache   cache.Cache
	keyer   cache.Keyer
	layout  layout.Options
	metrics *Metrics
	cfg     config.Server
}

// New creates a server and installs its metrics as the process hooks.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	k := opts.Keyer
	if k == nil {
		k = cache.NewDefaultKeyer()
	}

	s := &Server{
		logger:  logger,
		store:   st,
		cache:   c,
		keyer:   k,
		layout:  opts.Layout,
		metrics: NewMetrics("orbit"),
		cfg:     opts.Server,
	}
	s.metrics.Install()
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handleCreateSnapshot)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSnapshot)
				r.Delete("/", s.handleDeleteSnapshot)
				r.Post("/expand", s.handleExpand)
				r.Post("/append", s.handleAppend)
				r.Post("/layout", s.handleSnapshotLayout)
			})
		})
	})
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// instrument records request counts and durations per route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(ww.Status())
		s.metrics.HTTPRequests.WithLabelValues(r.Method, route, status).Inc()
		s.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		s.logger.Debug("request", "method", r.Method, "route", route, "status", ww.Status(), "dur", time.Since(start))
	})
}
