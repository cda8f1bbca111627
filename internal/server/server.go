// Package server provides the HTTP API for semindex.
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

	"github.com/hyperjump/semindex/internal/config"
	"github.com/hyperjump/semindex/internal/search"
	"github.com/hyperjump/semindex/internal/storage"
)

// WatchService manages watched directories at runtime.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the semindex API.
type Server struct {
	engine  *search.Engine
	storage storage.Storage
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server

	watch         WatchService
	configPath    string
	watchConfig   *config.Config
	watchConfigMu sync.Mutex
}

// NewServer creates a server. storage and watch may be nil, which disables the
// snapshot and watch endpoints. When configPath and appConfig are set, watch
// directory changes are written back to the config file.
func NewServer(
	engine *search.Engine,
	storage storage.Storage,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	watch WatchService,
	configPath string,
	appConfig *config.Config,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:      engine,
		storage:     storage,
		config:      cfg,
		logger:      logger,
		watch:       watch,
		configPath:  configPath,
		watchConfig: appConfig,
	}
}

// Router builds the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Get("/indices", s.handleListIndices)
		r.Post("/indices", s.handleCreateIndex)
		r.Route("/indices/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetIndex)
			r.Delete("/", s.handleDropIndex)
			r.Post("/snapshot", s.handleSaveSnapshot)

			r.Post("/content", s.handleAddContent)
			r.Post("/embeddings", s.handleAddEmbedding)
			r.Get("/embeddings/{id}", s.handleGetEmbedding)
			r.Delete("/embeddings/{id}", s.handleDeleteEmbedding)
			r.Get("/embeddings/{id}/similar", s.handleFindSimilar)

			r.Post("/search", s.handleSearch)
			r.Post("/clusters", s.handleCluster)
			r.Post("/recommendations", s.handleRecommend)
			r.Get("/trends", s.handleTrends)
			r.Post("/gaps", s.handleGaps)
		})

		r.Get("/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
		r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)
	})
	return r
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
