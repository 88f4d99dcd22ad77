package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/ragd/internal/catalog"
	"github.com/hyperjump/ragd/internal/server"
	"github.com/hyperjump/ragd/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Index the catalog and start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()
		logger.Info("config loaded", zap.String("config_path", configPath), zap.Bool("debug", cfg.Debug))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := Bootstrap(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := []server.Option{
			server.WithKeywordIndex(app.Keyword),
			server.WithSearchEngine(app.Search),
		}
		if cfg.Catalog.Watch && !catalog.IsRemote(cfg.Catalog.Source) {
			w, err := watcher.NewCatalogWatcher(cfg.Catalog.Source,
				watcher.WithLogger(logger),
				watcher.WithOnChange(func(path string, op fsnotify.Op) {
					logger.Warn("catalog changed on disk; restart to reindex",
						zap.String("path", path), zap.String("op", op.String()))
				}))
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
			opts = append(opts, server.WithStalenessReporter(w))
		}

		srv, err := server.NewServer(app.Service, cfg, logger, opts...)
		if err != nil {
			return err
		}
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
