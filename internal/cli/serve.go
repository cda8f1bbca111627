package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/semindex/internal/config"
	"github.com/hyperjump/semindex/internal/embedding"
	"github.com/hyperjump/semindex/internal/extract"
	"github.com/hyperjump/semindex/internal/indexer"
	"github.com/hyperjump/semindex/internal/search"
	"github.com/hyperjump/semindex/internal/server"
	"github.com/hyperjump/semindex/internal/storage"
	"github.com/hyperjump/semindex/internal/vector"
	"github.com/hyperjump/semindex/internal/watcher"
	"github.com/hyperjump/semindex/pkg/utils"
)

const defaultWatchIndex = "files"

// Components holds everything the server and offline commands share.
type Components struct {
	Storage  storage.Storage // nil when snapshots are disabled
	Embedder embedding.Embedder
	Engine   *search.Engine
	Indexer  *indexer.Indexer
}

// Close releases storage and the embedder.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// SaveSnapshots persists every index. The first error is returned after all
// indices have been tried.
func (c *Components) SaveSnapshots(ctx context.Context, logger *zap.Logger) error {
	if c.Storage == nil {
		return nil
	}
	var firstErr error
	for _, info := range c.Engine.ListIndices() {
		snap, embs, err := c.Engine.Store().Export(info.Name)
		if err == nil {
			err = c.Storage.SaveIndex(ctx, snap, embs)
		}
		if err != nil {
			logger.Warn("snapshot save failed", zap.String("index", info.Name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		logger.Debug("snapshot saved", zap.String("index", info.Name), zap.Int("vectors", len(embs)))
	}
	return firstErr
}

// StopAndSave stops watch, waiting out any re-index already running, and then
// saves snapshots so late changes are not lost.
func (c *Components) StopAndSave(ctx context.Context, watch interface{ Stop() }, logger *zap.Logger) error {
	if watch != nil {
		watch.Stop()
	}
	return c.SaveSnapshots(ctx, logger)
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}

	if cfg.Storage.SnapshotEnabled {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = store
	}

	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder

	opts := []search.Option{search.WithLogger(logger)}
	if cfg.Clustering.Seed != nil {
		opts = append(opts, search.WithClusterSeed(*cfg.Clustering.Seed))
	}
	if cfg.Clustering.MaxIterations > 0 {
		opts = append(opts, search.WithClusterIterations(cfg.Clustering.MaxIterations))
	}
	c.Engine = search.NewEngine(vector.NewStore(), embedder, &cfg.Search, opts...)

	if c.Storage != nil {
		snapshots, err := c.Storage.LoadIndices(ctx)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load snapshots: %w", err)
		}
		for _, snap := range snapshots {
			if err := c.Engine.Store().Restore(snap.Info, snap.Embeddings); err != nil {
				logger.Warn("snapshot restore skipped", zap.String("index", snap.Info.Name), zap.Error(err))
				continue
			}
			logger.Info("index restored",
				zap.String("index", snap.Info.Name),
				zap.Int("vectors", len(snap.Embeddings)))
		}
	}

	for _, ic := range cfg.Indices {
		if _, err := c.Engine.CreateIndex(ic.Name, ic.Dimension, ic.Metric); err != nil && !errors.Is(err, vector.ErrDuplicateIndex) {
			c.Close()
			return nil, fmt.Errorf("failed to create index %s: %w", ic.Name, err)
		}
	}

	watchIndex := cfg.Watch.Index
	if watchIndex == "" {
		watchIndex = defaultWatchIndex
	}
	c.Indexer = indexer.NewIndexer(c.Engine, extract.NewExtractor(), watchIndex,
		indexer.WithExtensions(cfg.Watch.Extensions),
		indexer.WithLogger(logger))
	if err := c.Indexer.EnsureIndex(cfg.Embedding.Dimensions, "cosine"); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create index %s: %w", watchIndex, err)
	}
	return c, nil
}

// NewServerCmd creates the server command.
func NewServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP API and directory watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolvedPath, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			debugMode := cfg.Debug || debugFlag
			logger, err := utils.NewLogger(debugMode)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			logger.Info("config loaded",
				zap.String("config_path", resolvedPath),
				zap.Bool("debug", debugMode),
				zap.String("embedding_provider", cfg.Embedding.Provider))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			components, err := initializeComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			watch := watcher.New(components.Indexer, watcher.Options{
				Roots:      cfg.Watch.Directories,
				Extensions: cfg.Watch.Extensions,
				Recursive:  cfg.Watch.RecursiveOrDefault(),
				Logger:     logger,
			})
			if err := watch.Start(ctx); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			defer watch.Stop()
			go watch.SyncExistingFiles()

			srv := server.NewServer(components.Engine, components.Storage, &cfg.Server, logger, watch, resolvedPath, cfg)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				logger.Warn("server shutdown failed", zap.Error(err))
			}
			_ = components.StopAndSave(shutdownCtx, watch, logger)
			return nil
		},
	}
}
