package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/resume-router/internal/bootstrap"
	"github.com/kirillkom/resume-router/internal/config"
	"github.com/kirillkom/resume-router/internal/observability/logging"
)

// withApp loads configuration, wires the CLI role and closes everything after fn returns.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv("CONFIG_FILE", path); err != nil {
			return fmt.Errorf("set config file: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, syncLogs := logging.New(logging.Options{
		Service: "resumectl",
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		Debug:   cfg.Debug,
		Stderr:  true,
	})
	defer syncLogs()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.RoleCLI, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	defer func() { _ = app.Shutdown(context.WithoutCancel(ctx)) }()

	return fn(ctx, app)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "resumectl",
		Short:         "Classify and route PDF resumes from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (.yml, .yaml or .env); the environment overrides it")

	rootCmd.AddCommand(
		classifyCommand(),
		routeCommand(),
		runsCommand(),
		mcpCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
