// Package server exposes health, readiness, metrics and the apply API over
// HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gitlab.bluewillows.net/root/sambadns/pkg/reconcile"
)

// Readiness status values.
const (
	StatusHealthy  = "healthy"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthChecker checks one component. A nil error means healthy.
type HealthChecker func(ctx context.Context) error

// HealthStatus represents the health status of a component.
type HealthStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Response is the body of /health and /ready.
type Response struct {
	Status     string         `json:"status"`
	Components []HealthStatus `json:"components,omitempty"`
}

// Applier converges the backend toward one request.
type Applier interface {
	Apply(ctx context.Context, req reconcile.Request) (reconcile.Response, error)
}

// ResultHook is called after every apply request that passed decoding.
type ResultHook func(ctx context.Context, req reconcile.Request, resp reconcile.Response)

// Server provides /health, /ready, /metrics and /v1/apply.
type Server struct {
	addr         string
	applier      Applier
	router       chi.Router
	server       *http.Server
	logger       *slog.Logger
	timeout      time.Duration
	applyTimeout time.Duration
	metrics      http.Handler
	onResult     ResultHook
	forceDryRun  bool

	username string
	password string

	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout sets the timeout for readiness checks.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.timeout = timeout
	}
}

// WithApplyTimeout bounds each apply request. Zero means no bound beyond
// the client's own connection.
func WithApplyTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.applyTimeout = timeout
	}
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithDefaultCredentials fills the Samba credentials of requests that
// carry neither a username nor a password.
func WithDefaultCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithForceDryRun makes every apply request a dry-run.
func WithForceDryRun(force bool) Option {
	return func(s *Server) {
		s.forceDryRun = force
	}
}

// WithResultHook registers a callback for apply results.
func WithResultHook(hook ResultHook) Option {
	return func(s *Server) {
		s.onResult = hook
	}
}

// New creates a server listening on addr that hands apply requests to
// applier.
func New(addr string, applier Applier, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		applier:  applier,
		logger:   slog.Default(),
		timeout:  5 * time.Second,
		checkers: make(map[string]HealthChecker),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// RegisterChecker adds a health checker for the /ready endpoint.
func (s *Server) RegisterChecker(name string, checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.logger.Debug("registered health checker", slog.String("name", name))
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.CleanPath, s.logRequests, middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/apply", s.handleApply)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Response{Status: StatusHealthy})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]HealthChecker, len(s.checkers))
	for name, checker := range s.checkers {
		checkers[name] = checker
	}
	s.mu.RUnlock()
	slices.Sort(names)

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	resp := Response{Status: StatusReady}
	status := http.StatusOK
	for _, name := range names {
		component := HealthStatus{Name: name, Healthy: true}
		if err := checkers[name](ctx); err != nil {
			component.Healthy = false
			component.Error = err.Error()
			resp.Status = StatusNotReady
			status = http.StatusServiceUnavailable
			s.logger.Warn("health check failed",
				slog.String("component", name),
				slog.String("error", err.Error()),
			)
		}
		resp.Components = append(resp.Components, component)
	}

	writeJSON(w, status, resp)
}

// Start listens on the configured address and serves in a goroutine.
// Listen errors are returned; serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// logRequests logs one line per request at debug level, warn for 5xx.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
