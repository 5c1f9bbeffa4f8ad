package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/resume-router/internal/bootstrap"
	"github.com/kirillkom/resume-router/internal/core/domain"
)

func classifyCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "classify <file.pdf>",
		Short: "Extract and classify a resume without sending email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				upload, closeFn, err := openUpload(args[0])
				if err != nil {
					return err
				}
				defer closeFn()

				preview, err := app.Previewer.Preview(ctx, upload)
				if err != nil {
					return fmt.Errorf("classify %s: %w", args[0], err)
				}
				return writeOutput(cmd.OutOrStdout(), output, preview)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func routeCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "route <file.pdf>",
		Short: "Classify a resume and email it to its domain recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				upload, closeFn, err := openUpload(args[0])
				if err != nil {
					return err
				}
				defer closeFn()

				run, err := app.Submitter.RouteNow(ctx, upload)
				if err != nil {
					return fmt.Errorf("route %s: %w", args[0], err)
				}
				if err := writeOutput(cmd.OutOrStdout(), output, run); err != nil {
					return err
				}
				if run.State != domain.StateSuccess {
					return fmt.Errorf("run %s ended in state %s", run.ID, run.State)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func openUpload(path string) (domain.Upload, func(), error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.Upload{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return domain.Upload{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return domain.Upload{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Body:     file,
	}, func() { _ = file.Close() }, nil
}
