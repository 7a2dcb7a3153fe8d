package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"ballotmap/internal/catalog"
	"ballotmap/internal/view"
)

// IndexBuilder produces a fresh index from the configured feeds.
type IndexBuilder interface {
	Build(ctx context.Context, incumbents []catalog.Incumbent) (*catalog.Index, catalog.BuildReport)
	Reset()
}

// Server exposes one view session over HTTP. Session access is serialized
// by mu; index builds run outside the lock and only their commit takes it.
type Server struct {
	router     *chi.Mux
	logger     *zap.Logger
	builder    IndexBuilder
	incumbents []catalog.Incumbent

	mu      sync.Mutex
	session *view.Session
	report  *catalog.BuildReport
}

func NewServer(session *view.Session, builder IndexBuilder, incumbents []catalog.Incumbent, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:     logger,
		builder:    builder,
		incumbents: incumbents,
		session:    session,
	}
	s.setupRouter()
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/index", s.handleGetIndex)
		r.Post("/index/reload", s.handleReload)
		r.Get("/positions/{key}", s.handleGetPosition)
		r.Get("/counties/{county}/offices", s.handleCountyOffices)

		r.Route("/view", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Post("/state", s.handleSelectState)
			r.Post("/county", s.handleSelectCounty)
			r.Post("/back", s.handleBack)
			r.Post("/position", s.handleSelectPosition)
			r.Delete("/position", s.handleClearPosition)
			r.Put("/filter", s.handleApplyFilter)
			r.Put("/display", s.handleSetDisplay)
			r.Get("/offices", s.handleOffices)
			r.Get("/candidates", s.handleCandidates)
		})
	})

	s.router = r
}

// Reload rebuilds the index and commits it to the session unless a newer
// build started meanwhile or ctx was cancelled before the build finished.
func (s *Server) Reload(ctx context.Context) (catalog.BuildReport, bool) {
	s.builder.Reset()
	gen := s.session.BeginBuild()
	idx, report := s.builder.Build(ctx, s.incumbents)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		s.logger.Info("index build abandoned", zap.String("build", report.ID), zap.Error(ctx.Err()))
		return report, false
	}
	if !s.session.CommitBuild(gen, idx) {
		return report, false
	}
	s.report = &report
	s.logger.Info("index committed",
		zap.String("build", report.ID),
		zap.Int("positions", report.Positions),
		zap.Int("counties", report.Counties),
		zap.Int("failedFeeds", report.FailedFeeds()),
	)
	return report, true
}

// Invalidate discards any build still in flight.
func (s *Server) Invalidate() {
	s.session.Invalidate()
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
