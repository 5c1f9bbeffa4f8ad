package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/kirillkom/resume-router/internal/adapters/http"
	"github.com/kirillkom/resume-router/internal/bootstrap"
	"github.com/kirillkom/resume-router/internal/config"
	"github.com/kirillkom/resume-router/internal/observability/logging"
	"github.com/kirillkom/resume-router/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger, syncLogs := logging.New(logging.Options{
		Service: "api",
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		Debug:   cfg.Debug,
	})
	defer syncLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.RoleAPI, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		syncLogs()
		os.Exit(1)
	}
	defer app.Close()

	apiDoc, err := httpadapter.LoadOpenAPI(ctx)
	if err != nil {
		logger.Error("openapi_invalid", "error", err)
		syncLogs()
		os.Exit(1)
	}

	router := httpadapter.NewRouter(cfg, app.Submitter, app.Previewer, app.Runs,
		httpadapter.WithLogger(logger),
		httpadapter.WithMetrics(app.HTTPMetrics, metrics.Handler(app.Registry)),
		httpadapter.WithOpenAPI(apiDoc),
	).Handler()

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logger.Error("api_listen_failed", "addr", cfg.Addr(), "error", err)
		syncLogs()
		os.Exit(1)
	}
	if cfg.APIMaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConnections)
	}

	go func() {
		logger.Info("api_listening",
			"addr", cfg.Addr(),
			"llm_provider", cfg.LLMProvider,
			"dispatch_mode", cfg.DispatchMode,
			"journal", cfg.JournalDriver,
		)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("pipeline_drain_failed", "error", err)
	}
	logger.Info("api_stopped")
}
