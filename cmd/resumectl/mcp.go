package main

import (
	"context"

	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/resume-router/internal/adapters/mcp"
	"github.com/kirillkom/resume-router/internal/bootstrap"
)

func mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve classify_resume and route_resume as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, app *bootstrap.App) error {
				return mcpadapter.NewServer(app.Submitter, app.Previewer, app.Logger).ServeStdio()
			})
		},
	}
}
