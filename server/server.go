// Package server exposes a pMPO model over HTTP: health, the model document
// and batch scoring, plus Prometheus metrics.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/pmpo"
)

// Config holds server configuration
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// ScoreRate limits POST /score to this many requests per second with
	// ScoreBurst headroom. Zero disables the limit.
	ScoreRate  float64
	ScoreBurst int
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server serves one read-only model.
type Server struct {
	router   *mux.Router
	server   *http.Server
	model    *pmpo.Model
	registry *prometheus.Registry
	metrics  *Metrics
	logger   log.Logger
	config   Config
	limiter  *rate.Limiter
}

type ctxKey int

const requestIDKey ctxKey = iota

// New creates a server for m. The model must not be reconfigured while the
// server is running.
func New(m *pmpo.Model, config Config) (*Server, error) {
	if m == nil {
		return nil, errors.NewPreconditionError("server.New", "model is nil")
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		router:   mux.NewRouter(),
		model:    m,
		registry: reg,
		metrics:  NewMetrics(reg),
		logger:   log.GetLoggerWithName("pmpo.server").With(log.ModelNameKey, m.Name()),
		config:   config,
	}
	if config.ScoreRate > 0 {
		burst := config.ScoreBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.ScoreRate), burst)
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.instrumentMiddleware)
	s.router.Use(s.recoverMiddleware)

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/model", s.document).Methods(http.MethodGet)
	s.router.Handle("/score", s.rateLimitMiddleware(http.HandlerFunc(s.score))).Methods(http.MethodPost)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting HTTP server", "addr", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestIDMiddleware adds a unique request ID to each request
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// instrumentMiddleware records metrics and logs each request
func (s *Server) instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		duration := time.Since(start)

		s.metrics.Requests.WithLabelValues(route, r.Method, strconv.Itoa(wrapper.statusCode)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
		s.logger.Debug("Request served",
			log.RequestIDKey, requestID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", wrapper.statusCode,
			log.DurationMsKey, duration.Milliseconds(),
		)
	})
}

// rateLimitMiddleware rejects requests above the configured rate with 429
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns handler panics into 500 responses
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := errors.SafeExecute("http "+r.URL.Path, func() error {
			next.ServeHTTP(w, r)
			return nil
		})
		if err != nil {
			s.metrics.Panics.Inc()
			s.logger.Error("Handler panicked", err, log.RequestIDKey, requestID(r.Context()))
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
