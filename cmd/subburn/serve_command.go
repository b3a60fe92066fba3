package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subburn/internal/config"
	"subburn/internal/daemon"
	"subburn/internal/jobs"
	"subburn/internal/logging"
	"subburn/internal/metrics"
	"subburn/internal/notifications"
	"subburn/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx)
		},
	}
}

func runServe(cmd *cobra.Command, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logPreflight(signalCtx, cfg, logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return err
	}
	notifier := notifications.NewService(cfg)
	orchestrator, err := buildOrchestrator(cfg, store, notifier, m, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("build pipeline: %w", err)
	}

	d, err := daemon.New(cfg, daemon.Deps{
		Store:    store,
		Runner:   orchestrator,
		Notifier: notifier,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "subburn listening on http://%s\n", d.Addr())

	<-signalCtx.Done()
	logger.Info("subburn daemon shutting down")
	return nil
}

func logPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Debug("preflight passed", logging.String("check", result.Name), logging.String("detail", result.Detail))
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run 'subburn check' for a full report"),
		)
	}
	for _, status := range preflight.CheckSystemDeps(ctx, cfg) {
		if status.Available {
			continue
		}
		logging.WarnWithContext(logger, "dependency unavailable", "dependency_missing",
			logging.String("dependency", status.Name),
			logging.String("detail", status.Detail),
			logging.String(logging.FieldImpact, "jobs will fail at the extract or render stage"),
		)
	}
}
