package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/api"
)

func newStylesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "styles",
		Short:       "List caption style presets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := api.StylePresets()
			if asJSON {
				return writeJSON(cmd, presets)
			}
			rows := make([][]string, 0, len(presets))
			for _, p := range presets {
				rows = append(rows, []string{p.Name, p.Label, p.FontColor, p.BackgroundColor})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Label", "Font", "Background"},
				rows,
			))
			names := make([]string, 0, len(presets))
			for _, p := range presets {
				names = append(names, p.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Use --style with one of: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
