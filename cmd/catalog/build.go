package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/zarr-catalog-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/zarr-catalog-etl/internal/adapter/kafka"
	"github.com/couchcryptid/zarr-catalog-etl/internal/catalog"
	"github.com/couchcryptid/zarr-catalog-etl/internal/crawl"
	"github.com/couchcryptid/zarr-catalog-etl/internal/observability"
	"github.com/couchcryptid/zarr-catalog-etl/internal/pipeline"
)

func newBuildCommand(app *appContext) *cobra.Command {
	var serve bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Crawl, parse, and write the selected catalog, then patch its catalog_file key",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runBuild(ctx, app, serve, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "Keep the HTTP server running after the build until interrupted")

	return cmd
}

func runBuild(ctx context.Context, app *appContext, serve bool, out io.Writer) error {
	cfg, logger := app.config, app.logger

	store, err := app.newStore(ctx)
	if err != nil {
		return err
	}
	def, err := app.definition(ctx, store)
	if err != nil {
		return err
	}

	crawler, err := crawl.New(store, crawl.Options{
		Paths:   def.Paths,
		Depth:   def.Depth,
		Include: def.Include,
		Exclude: def.Exclude,
	}, logger)
	if err != nil {
		return err
	}

	var notifier pipeline.Notifier
	if cfg.NotifyEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		notifier = writer
		logger.Info("catalog events enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(def,
		crawler,
		catalog.NewWriter(store, logger),
		catalog.NewPatcher(store, logger),
		notifier,
		logger,
		observability.NewMetrics(),
	)

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	sum, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("build %s: %w", def.Name, err)
	}

	fmt.Fprintf(out, "%s: %d records, %d invalid, %d duplicates\n%s\n",
		def.Name, sum.Records, sum.Invalid, sum.Duplicates, sum.CatalogFile)

	if serve && srv != nil {
		logger.Info("build complete, serving until interrupted")
		<-ctx.Done()
		logger.Info("shutting down")
	}
	return nil
}
