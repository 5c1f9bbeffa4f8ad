package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/resume-router/internal/bootstrap"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func runsCommand() *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show journaled pipeline runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if len(args) == 1 {
					run, err := app.Runs.GetRun(ctx, args[0])
					if err != nil {
						return err
					}
					return writeOutput(cmd.OutOrStdout(), output, run)
				}
				runs, err := app.Runs.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, runs)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
