// Package server provides the HTTP API for dialname.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/dialname/internal/config"
	"github.com/hyperjump/dialname/internal/indexer"
	"github.com/hyperjump/dialname/internal/keyword"
	"github.com/hyperjump/dialname/internal/search"
	"github.com/hyperjump/dialname/internal/storage"
)

// WatchService manages watched contact directories. *watcher.Watcher implements it.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the dialname API.
type Server struct {
	engine       *search.Engine
	indexer      *indexer.Indexer
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	config       *config.ServerConfig
	logger       *zap.Logger
	server       *http.Server

	watch         WatchService
	configPath    string
	watchConfig   *config.Config
	watchConfigMu sync.Mutex
}

// NewServer creates a server with the given dependencies. watch may be nil when
// directory watching is disabled; when configPath and fullCfg are set, watch
// directory changes are persisted to the config file.
func NewServer(
	engine *search.Engine,
	idx *indexer.Indexer,
	store storage.Storage,
	keywordIndex keyword.KeywordIndex,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	watch WatchService,
	configPath string,
	fullCfg *config.Config,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:       engine,
		indexer:      idx,
		storage:      store,
		keywordIndex: keywordIndex,
		config:       cfg,
		logger:       logger,
		watch:        watch,
		configPath:   configPath,
		watchConfig:  fullCfg,
	}
}

// Router returns the HTTP handler with every API route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/lookup", s.handleLookup)
		r.Post("/speech/normalize", s.handleSpeechNormalize)
		r.Get("/status", s.handleStatus)
		r.Post("/import", s.handleImport)

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.handleListContacts)
			r.Post("/", s.handleCreateContact)
			r.Get("/{id}", s.handleGetContact)
			r.Put("/{id}", s.handleUpdateContact)
			r.Delete("/{id}", s.handleDeleteContact)
		})

		r.Route("/watch/directories", func(r chi.Router) {
			r.Get("/", s.handleWatchDirectoriesList)
			r.Post("/", s.handleWatchDirectoriesAdd)
			r.Delete("/", s.handleWatchDirectoriesRemove)
		})
	})
	return r
}

// requestLogger logs each request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
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
