package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/middleware/cors"
	"salesboard/internal/middleware/ratelimit"
	"salesboard/internal/middleware/security"
	"salesboard/internal/middleware/trace"
)

// Queries is the read side the API serves.
type Queries interface {
	List(ctx context.Context, p core.ListParams) ([]core.Transaction, error)
	Statistics(ctx context.Context, month int) (core.Statistics, error)
	BarChart(ctx context.Context, month int) ([]core.BarChartEntry, error)
	PieChart(ctx context.Context, month int) ([]core.CategoryCount, error)
	Combined(ctx context.Context, month int) (core.Combined, error)
}

// Options tune the server. Zero values fall back to defaults.
type Options struct {
	QueryTimeout time.Duration
	CORS         cors.Config
	// RateLimitPerMinute caps /api requests per client; 0 disables limiting.
	RateLimitPerMinute int
	Logger             *applog.Logger
}

const defaultQueryTimeout = 10 * time.Second

type Server struct {
	http.Server
	queries      Queries
	queryTimeout time.Duration
	logger       *applog.Logger
	ready        atomic.Bool

	ipResolver  *security.ClientIPResolver
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. The server reports not ready
// until SetReady(true) is called.
func NewServer(addr string, q Queries, opts Options) *Server {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	if opts.CORS.AllowedMethods == nil {
		origin := opts.CORS.AllowedOrigin
		opts.CORS = cors.DefaultConfig()
		if origin != "" {
			opts.CORS.AllowedOrigin = origin
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		queries:      q,
		queryTimeout: opts.QueryTimeout,
		logger:       logger,
		ipResolver:   security.NewClientIPResolver(),
	}
	s.tracer = trace.NewMiddleware(logger, s.ipResolver.ExtractClientIP)

	api := http.NewServeMux()
	api.HandleFunc("/api/transactions", s.get(s.handleTransactions))
	api.HandleFunc("/api/statistics", s.get(s.handleStatistics))
	api.HandleFunc("/api/barchart", s.get(s.handleBarChart))
	api.HandleFunc("/api/piechart", s.get(s.handlePieChart))
	api.HandleFunc("/api/combined", s.get(s.handleCombined))
	api.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "not found")
	})

	var apiHandler http.Handler = api
	if opts.RateLimitPerMinute > 0 {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		apiHandler = s.rateLimiter.Middleware(s.ipResolver.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
		})(apiHandler)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var root http.Handler = mux
	root = cors.Middleware(opts.CORS)(root)
	root = headers.Middleware(root)
	root = s.tracer.Middleware(root)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      opts.QueryTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// SetReady flips the readiness probe.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) Ready() bool {
	return s.ready.Load()
}

// Shutdown stops the limiter sweeper and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.SetReady(false)
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// TraceMetrics exposes request counters of the tracing middleware.
func (s *Server) TraceMetrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// get restricts a handler to GET and HEAD and bounds it by the query timeout.
func (s *Server) get(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, "GET, HEAD")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
