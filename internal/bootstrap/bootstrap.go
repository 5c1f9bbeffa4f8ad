package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/kirillkom/resume-router/internal/config"
	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
	"github.com/kirillkom/resume-router/internal/core/usecase"
	"github.com/kirillkom/resume-router/internal/infrastructure/dispatch/local"
	"github.com/kirillkom/resume-router/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/resume-router/internal/infrastructure/queue/nats"
	"github.com/kirillkom/resume-router/internal/infrastructure/resilience"
	"github.com/kirillkom/resume-router/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/resume-router/internal/observability/metrics"
)

// Role selects which executor an entrypoint needs.
type Role string

const (
	RoleAPI    Role = "api"
	RoleWorker Role = "worker"
	RoleCLI    Role = "cli"
)

type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPServerMetrics

	Submitter *usecase.SubmitUseCase
	Previewer *usecase.PreviewUseCase
	Pipeline  *usecase.PipelineUseCase
	Runs      *usecase.RunQueryUseCase

	// Queue is set when DISPATCH_MODE=nats or for the worker role.
	Queue *nats.Queue
	// Pool is set whenever pipeline runs execute in this process.
	Pool *local.Pool

	intake  *usecase.IntakeUseCase
	closers *closers
}

type appParams struct {
	dig.In

	Config      config.Config
	Logger      *slog.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPServerMetrics
	Submitter   *usecase.SubmitUseCase
	Previewer   *usecase.PreviewUseCase
	Pipeline    *usecase.PipelineUseCase
	Runs        *usecase.RunQueryUseCase
	Queue       *nats.Queue
	Pool        *local.Pool
	Intake      *usecase.IntakeUseCase
	Closers     *closers
}

// New wires every component for role. On error everything opened so far is closed.
func New(ctx context.Context, cfg config.Config, role Role, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if role == RoleWorker && cfg.DispatchMode != config.DispatchNATS {
		return nil, errors.New("worker requires DISPATCH_MODE=nats")
	}

	cl := &closers{}
	container, err := buildContainer(ctx, cfg, role, logger, cl)
	if err != nil {
		return nil, err
	}

	var app *App
	err = container.Invoke(func(p appParams) {
		app = &App{
			Config:      p.Config,
			Logger:      p.Logger,
			Registry:    p.Registry,
			HTTPMetrics: p.HTTPMetrics,
			Submitter:   p.Submitter,
			Previewer:   p.Previewer,
			Pipeline:    p.Pipeline,
			Runs:        p.Runs,
			Queue:       p.Queue,
			Pool:        p.Pool,
			intake:      p.Intake,
			closers:     p.Closers,
		}
	})
	if err != nil {
		cl.closeAll()
		return nil, fmt.Errorf("wire components: %w", dig.RootCause(err))
	}
	return app, nil
}

// RunQueued runs a document published by the API process. The document is rebound
// to this process's upload directory first. A full pool pushes back on the
// subscription by running the document inline.
func (a *App) RunQueued(ctx context.Context, doc *domain.UploadedDocument) {
	doc = a.intake.Adopt(doc)
	if a.Pool == nil {
		a.Pipeline.Run(ctx, doc)
		return
	}
	if err := a.Pool.Dispatch(ctx, doc); err != nil {
		a.Pipeline.Run(ctx, doc)
	}
}

func buildContainer(ctx context.Context, cfg config.Config, role Role, logger *slog.Logger, cl *closers) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() context.Context { return ctx },
		func() config.Config { return cfg },
		func() Role { return role },
		func() *slog.Logger { return logger },
		func() *closers { return cl },

		metrics.NewRegistry,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		func(reg prometheus.Registerer) *metrics.PipelineMetrics {
			return metrics.NewPipelineMetrics(string(role), reg)
		},
		func(reg prometheus.Registerer) *metrics.HTTPServerMetrics {
			return metrics.NewHTTPServerMetrics(string(role), reg)
		},
		newExecutor,

		func(cfg config.Config) (*localfs.Storage, error) {
			store, err := localfs.New(cfg.UploadDir)
			if err != nil {
				return nil, fmt.Errorf("init upload storage: %w", err)
			}
			return store, nil
		},
		func(store *localfs.Storage) ports.DocumentStore { return store },
		func(cfg config.Config, store ports.DocumentStore, logger *slog.Logger) *usecase.IntakeUseCase {
			return usecase.NewIntakeUseCase(store, cfg.MaxFileSize, logger)
		},
		func() ports.TextExtractor { return pdftext.NewExtractor() },

		newCompleter,
		func(cfg config.Config, completer ports.TextCompleter, logger *slog.Logger) *usecase.ClassifierUseCase {
			return usecase.NewClassifierUseCase(completer, cfg.LLMTimeout, logger)
		},
		newMailTransport,
		func(cfg config.Config, transport ports.MailTransport, store ports.DocumentStore, logger *slog.Logger) *usecase.NotifierUseCase {
			return usecase.NewNotifierUseCase(cfg.Recipients(), transport, store, logger)
		},
		newJournal,
		func(
			intake *usecase.IntakeUseCase,
			extractor ports.TextExtractor,
			classifier *usecase.ClassifierUseCase,
			notifier *usecase.NotifierUseCase,
			journal ports.RunJournal,
			observer *metrics.PipelineMetrics,
			logger *slog.Logger,
		) *usecase.PipelineUseCase {
			return usecase.NewPipelineUseCase(intake, extractor, classifier, notifier, journal, observer, logger)
		},

		newQueue,
		newPool,
		newDispatcher,
		func(
			intake *usecase.IntakeUseCase,
			dispatcher ports.Dispatcher,
			pipeline *usecase.PipelineUseCase,
			observer *metrics.PipelineMetrics,
			logger *slog.Logger,
		) *usecase.SubmitUseCase {
			return usecase.NewSubmitUseCase(intake, dispatcher, pipeline, observer, logger)
		},
		func(
			intake *usecase.IntakeUseCase,
			extractor ports.TextExtractor,
			classifier *usecase.ClassifierUseCase,
			logger *slog.Logger,
		) *usecase.PreviewUseCase {
			return usecase.NewPreviewUseCase(intake, extractor, classifier, logger)
		},
		usecase.NewRunQueryUseCase,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, fmt.Errorf("register provider: %w", err)
		}
	}
	return container, nil
}

func newExecutor(cfg config.Config, logger *slog.Logger) *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  cfg.BreakerMinRequests,
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
	}, logger)
}

// Shutdown stops intake and waits for queued runs so every accepted document is released.
func (a *App) Shutdown(ctx context.Context) error {
	if a.Pool == nil {
		return nil
	}
	if err := a.Pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("drain pipeline pool: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.closers != nil {
		a.closers.closeAll()
	}
}

type closers struct {
	fns []func()
}

func (c *closers) add(fn func()) {
	c.fns = append(c.fns, fn)
}

func (c *closers) closeAll() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
	c.fns = nil
}
