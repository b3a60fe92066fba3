package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"subburn/internal/api"
	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/notifications"
)

type runOptions struct {
	settings jobs.Settings
	json     bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Caption a local video in the foreground",
		Long: "Copy a video into the upload directory, transcribe it and burn captions in,\n" +
			"waiting for the result. The job is stored like an upload made over HTTP.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, ctx, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.settings.Style, "style", "", "Style preset (classic, boxed, neon, cinema, modern)")
	flags.IntVar(&opts.settings.FontSize, "font-size", 0, "Caption font size")
	flags.StringVar(&opts.settings.FontColor, "font-color", "", "Caption color as #RRGGBB")
	flags.StringVar(&opts.settings.BackgroundColor, "bg-color", "", "Box color as #RRGGBB, or none")
	flags.StringVar(&opts.settings.Position, "position", "", "Caption position (top, center, bottom)")
	flags.StringVar(&opts.settings.FontFamily, "font", "", "Caption font family")
	flags.BoolVar(&opts.json, "json", false, "Output the finished job as JSON")
	return cmd
}

func runOnce(cmd *cobra.Command, ctx *commandContext, videoPath string, opts runOptions) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	settings := api.ApplyPreset(opts.settings)
	if err := api.ValidateSettings(settings); err != nil {
		return err
	}

	logger, err := ctx.cliLogger()
	if err != nil {
		return err
	}

	return ctx.withStore(func(cfg *config.Config, store *jobs.Store) error {
		orchestrator, err := buildOrchestrator(cfg, store, notifications.NewService(cfg), nil, logger)
		if err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}
		svc := api.NewJobService(api.JobServiceDeps{
			Store:     store,
			UploadDir: cfg.Paths.UploadDir,
			Logger:    logger,
		})

		file, err := os.Open(videoPath)
		if err != nil {
			return fmt.Errorf("open video: %w", err)
		}
		uploaded, err := svc.Upload(signalCtx, filepath.Base(videoPath), file)
		file.Close()
		if err != nil {
			return err
		}

		if _, err := orchestrator.Begin(signalCtx, uploaded.ID, settings); err != nil {
			return err
		}
		started := time.Now()
		runErr := orchestrator.Run(signalCtx, uploaded.ID)

		job, err := store.Get(cmd.Context(), uploaded.ID)
		if err != nil || job == nil {
			return fmt.Errorf("reload job %s: %w", uploaded.ID, err)
		}
		if opts.json {
			if err := writeJSON(cmd, api.FromJob(job)); err != nil {
				return err
			}
		} else {
			printJobDetail(cmd, job, shouldColorize(cmd.OutOrStdout()))
			fmt.Fprintf(cmd.OutOrStdout(), "  %-*s %s\n", statusLabelWidth, "Elapsed:", time.Since(started).Round(time.Millisecond))
		}
		if runErr != nil {
			return fmt.Errorf("job %s failed: %w", job.ID, runErr)
		}
		return nil
	})
}
