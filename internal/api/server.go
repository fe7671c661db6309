// Package api serves the matching engine over HTTP for the dashboard.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/ai"
	"github.com/spigell/joblo/internal/filtering"
	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/recommend"
	"github.com/spigell/joblo/internal/resume"
	"github.com/spigell/joblo/internal/scoring"
)

const (
	maxUploadSize   = 10 << 20
	shutdownTimeout = 10 * time.Second
)

// ProfileParser turns résumé files or pasted text into profiles.
type ProfileParser interface {
	ExtractFile(path string) (*resume.Profile, error)
	ExtractText(text string) *resume.Profile
}

type Server struct {
	source      jobs.Source
	scorer      *scoring.Scorer
	recommender *recommend.Recommender
	parser      ProfileParser
	matcher     ai.Matcher
	filters     []filtering.Filter
	metrics     *Metrics
	logger      *zap.Logger
}

type Option func(*Server)

// WithMatcher enables the optional AI second opinion on /api/score.
func WithMatcher(m ai.Matcher) Option {
	return func(s *Server) { s.matcher = m }
}

// WithFilters exposes the pipeline state on /api/filters.
func WithFilters(steps []filtering.Filter) Option {
	return func(s *Server) { s.filters = steps }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(source jobs.Source, scorer *scoring.Scorer, parser ProfileParser, opts ...Option) *Server {
	if scorer == nil {
		scorer = scoring.NewScorer()
	}
	s := &Server{
		source:  source,
		scorer:  scorer,
		parser:  parser,
		metrics: NewMetrics(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recommender = recommend.New(source, scorer, parser, s.logger)
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/filters", s.listFilters)
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.listJobs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getJob)
				r.Get("/similar", s.similarJobs)
				r.Post("/better", s.betterMatches)
			})
		})
		r.Post("/score", s.score)
		r.Post("/extract", s.extract)
	})

	return r
}

// ListenAndServe runs until ctx is cancelled and then drains connections.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// observe logs every request and records it in the HTTP metrics under its
// route pattern, so ids do not blow up label cardinality.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)

		s.metrics.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		s.metrics.httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
