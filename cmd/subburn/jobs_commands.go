package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subburn/internal/api"
	"subburn/internal/jobs"
	"subburn/internal/services"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage stored jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsDeleteCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFlags(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withJobService(func(svc *api.JobService, _ *jobs.Store) error {
				videos, err := svc.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, videos)
				}
				out := cmd.OutOrStdout()
				if len(videos) == 0 {
					fmt.Fprintln(out, "No jobs found")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Status", "Style", "Created"},
					jobRows(videos),
					4,
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func parseStatusFlags(values []string) ([]jobs.Status, error) {
	statuses := make([]jobs.Status, 0, len(values))
	for _, value := range values {
		status, ok := jobs.ParseStatus(value)
		if !ok {
			known := make([]string, 0, 4)
			for _, s := range jobs.AllStatuses() {
				known = append(known, string(s))
			}
			return nil, fmt.Errorf("unknown status %q (expected %s)", value, strings.Join(known, ", "))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func jobRows(videos []api.Video) [][]string {
	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{v.ID, v.OriginalName, v.Status, v.Settings.Style, formatCreated(v.CreatedAt)})
	}
	return rows
}

func formatCreated(value string) string {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a job with its settings and artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobService(func(svc *api.JobService, store *jobs.Store) error {
				if asJSON {
					video, err := svc.Status(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return writeJSON(cmd, video)
				}
				job, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %s not found", args[0])
				}
				printJobDetail(cmd, job, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newJobsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete jobs and their files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobService(func(svc *api.JobService, _ *jobs.Store) error {
				out := cmd.OutOrStdout()
				removed := 0
				for _, id := range args {
					err := svc.Delete(cmd.Context(), id)
					switch {
					case err == nil:
						removed++
						fmt.Fprintf(out, "Deleted %s\n", id)
					case errors.Is(err, services.ErrNotFound):
						fmt.Fprintf(out, "Job %s not found\n", id)
					default:
						return err
					}
				}
				if removed == 0 {
					return errors.New("no jobs deleted")
				}
				return nil
			})
		},
	}
}
