package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Desire-2/afriprog/internal/config"
	"github.com/Desire-2/afriprog/internal/server"
	"github.com/Desire-2/afriprog/internal/store"
	"github.com/Desire-2/afriprog/internal/stream"
	"github.com/Desire-2/afriprog/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the progression HTTP server",
	Long: "Serve exposes the progression engine over HTTP and, when the " +
		"stream is enabled, keeps the store in sync with progress events " +
		"from NATS.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err := newLogger(cfg.Server.Debug)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() {
			_ = logger.Sync()
		}()

		dbPath, err := serveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		eng, err := newEngine(cfg)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		metrics := telemetry.NewMetrics()
		srv := server.NewServer(&server.Options{
			Addr:     cfg.Server.Addr,
			Debug:    cfg.Server.Debug,
			Engine:   eng,
			Progress: st.ProgressRepo(),
			Logger:   logger,
			Metrics:  metrics,
		})

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			logger.Info("shutting down", zap.String("signal", sig.String()))
			cancel()
		}()

		if cfg.Stream.Enabled {
			nc, err := stream.Connect(cfg.Stream.URL)
			if err != nil {
				return fmt.Errorf("connect stream: %w", err)
			}
			defer nc.Close()

			sub, err := stream.NewSubscriber(stream.Options{
				Conn:              nc,
				Engine:            eng,
				Progress:          st.ProgressRepo(),
				Events:            st.EventRepo(),
				Subject:           cfg.Stream.Subject,
				RiskSubjectPrefix: cfg.Stream.RiskSubjectPrefix,
				Logger:            logger,
				Metrics:           metrics,
			})
			if err != nil {
				return fmt.Errorf("build stream subscriber: %w", err)
			}
			go func() {
				if err := sub.Run(ctx); err != nil {
					logger.Error("stream subscriber stopped", zap.Error(err))
					cancel()
				}
			}()
			logger.Info("stream subscriber started",
				zap.String("url", cfg.Stream.URL),
				zap.String("subject", cfg.Stream.Subject))
		}

		logger.Info("server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("db", dbPath),
			zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server: %w", err)
		case <-ctx.Done():
		}

		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer stopCancel()
		if err := srv.Stop(stopCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

// serveDBPath resolves the server's database path: --db flag, then the
// configured db.path, then the default XDG location.
func serveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// newLogger returns a development logger in debug mode, production
// otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
