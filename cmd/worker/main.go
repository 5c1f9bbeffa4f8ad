package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

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
		Service: "worker",
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		Debug:   cfg.Debug,
	})
	defer syncLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.RoleWorker, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		syncLogs()
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.WorkerMetricsPort),
		Handler:           metrics.Handler(app.Registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "workers", cfg.PipelineWorkers)
	err = app.Queue.Subscribe(ctx, app.RunQueued)
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("pipeline_drain_failed", "error", err)
	}
	_ = metricsServer.Shutdown(shutdownCtx)
	logger.Info("worker_stopped")
}
