package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/internal/cache"
	"github.com/dwsmith1983/campaignlens/internal/publish"
	"github.com/dwsmith1983/campaignlens/internal/server"
	"github.com/dwsmith1983/campaignlens/internal/server/handlers"
	"github.com/dwsmith1983/campaignlens/internal/sources"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the campaignlens HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	ctx := context.Background()

	// Telemetry
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	// Source
	src, snap, err := openSnapshot(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	// Report cache
	backend, err := cache.FromConfig(cfg.Cache)
	if err != nil {
		return fmt.Errorf("creating report cache: %w", err)
	}
	if closer, ok := backend.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}
	reports := cache.New(backend, cache.WithLogger(logger))

	// Export sinks
	dispatcher, err := publish.NewDispatcher(ctx, cfg.Export.Sinks, publish.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating export dispatcher: %w", err)
	}

	timeout := sources.Timeout(cfg.Source)
	srv := server.New(cfg.Server, handlers.Deps{
		Snapshot: snap,
		Source:   src.Source,
		Reload: func(ctx context.Context) (*store.Snapshot, error) {
			return sources.Load(ctx, src.Source, timeout, logger)
		},
		Reports:        reports,
		Publisher:      dispatcher,
		ExportFileName: cfg.Export.FileName,
		Logger:         logger,
	})

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		_ = shutdownTelemetry(ctx)
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
		color.Green("Server stopped gracefully")
		return nil
	}
}
