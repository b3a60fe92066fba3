package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subburn/internal/config"
	"subburn/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, ffmpeg and provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg, ctx.configPath)
		},
	}
}

func runCheck(cmd *cobra.Command, cfg *config.Config, configPath string) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	failures := 0

	for _, line := range renderSectionHeader("Configuration", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configPath, colorize))
	for _, result := range preflight.RunAll(cmd.Context(), cfg) {
		kind := statusOK
		if !result.Passed {
			kind = statusError
			failures++
		}
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, dep := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
		switch {
		case dep.Available:
			fmt.Fprintln(out, renderStatusLine(dep.Name, statusOK, dep.Command, colorize))
		case dep.Optional:
			fmt.Fprintln(out, renderStatusLine(dep.Name, statusWarn, dep.Detail, colorize))
		default:
			failures++
			fmt.Fprintln(out, renderStatusLine(dep.Name, statusError, dep.Detail, colorize))
		}
	}

	if failures > 0 {
		return errors.New("one or more checks failed")
	}
	return nil
}
