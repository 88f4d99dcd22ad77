// Package server provides the HTTP API for ragd.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/ragd/internal/config"
	"github.com/hyperjump/ragd/internal/keyword"
	"github.com/hyperjump/ragd/internal/rag"
	"github.com/hyperjump/ragd/internal/search"
	"go.uber.org/zap"
)

// StalenessReporter reports whether the catalog on disk changed after the index was built.
type StalenessReporter interface {
	Stale() (bool, time.Time)
}

// Server is the HTTP server for the ragd API.
type Server struct {
	service *rag.Service
	keyword keyword.KeywordIndex
	hybrid  *search.Engine
	watcher StalenessReporter
	config  *config.Config
	logger  *zap.Logger
	schemas *schemas
	maxK    int
	started time.Time
	server  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithKeywordIndex enables GET /api/v1/catalog/search.
func WithKeywordIndex(idx keyword.KeywordIndex) Option {
	return func(s *Server) { s.keyword = idx }
}

// WithSearchEngine enables mode=hybrid on GET /api/v1/catalog/search.
func WithSearchEngine(e *search.Engine) Option {
	return func(s *Server) { s.hybrid = e }
}

// WithStalenessReporter adds catalog staleness to the status endpoint.
func WithStalenessReporter(w StalenessReporter) Option {
	return func(s *Server) { s.watcher = w }
}

// NewServer creates a server with the given dependencies.
func NewServer(service *rag.Service, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxK := cfg.Search.MaxK
	if maxK <= 0 {
		maxK = 50
	}
	sc, err := newSchemas(maxK)
	if err != nil {
		return nil, err
	}
	s := &Server{
		service: service,
		config:  cfg,
		logger:  logger,
		schemas: sc,
		maxK:    maxK,
		started: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.config.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Post("/search", s.handleLegacySearch)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/answer", s.handleAnswer)
		r.Post("/retrieve", s.handleRetrieve)
		r.Get("/catalog/search", s.handleCatalogSearch)
		r.Get("/catalog/{id}", s.handleGetItem)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger logs one line per request with zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("http_request_id", middleware.GetReqID(r.Context())))
	})
}
