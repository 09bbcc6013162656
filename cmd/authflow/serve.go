package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authflow/internal/app"
	httpserver "github.com/dropDatabas3/authflow/internal/http"
	"github.com/dropDatabas3/authflow/internal/jobs"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP y el job de limpieza",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := httpserver.NewServer(httpserver.ServerConfig{
				Addr:         cfg.Server.Addr,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}, rt.Handler)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return httpserver.Serve(gctx, srv, cfg.Server.ShutdownGrace)
			})
			if cfg.Cleanup.Enabled {
				job := jobs.NewCleanup(rt.Store, rt.Metrics, cfg.Cleanup.Interval)
				g.Go(func() error { return job.Run(gctx) })
			}

			logger.L().Info("authflow started",
				logger.String("addr", cfg.Server.Addr),
				logger.String("issuer", cfg.Issuer),
				logger.String("storage", cfg.Storage.Driver),
				logger.String("cache", cfg.Cache.Driver),
			)
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.L().Info("authflow stopped")
			return nil
		},
	}
}
