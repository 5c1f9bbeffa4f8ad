package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/resume-router/internal/config"
	"github.com/kirillkom/resume-router/internal/core/ports"
	"github.com/kirillkom/resume-router/internal/core/usecase"
	"github.com/kirillkom/resume-router/internal/infrastructure/dispatch/local"
	"github.com/kirillkom/resume-router/internal/infrastructure/llm"
	"github.com/kirillkom/resume-router/internal/infrastructure/llm/bedrock"
	"github.com/kirillkom/resume-router/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/resume-router/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/resume-router/internal/infrastructure/llm/openrouter"
	"github.com/kirillkom/resume-router/internal/infrastructure/mail/smtp"
	"github.com/kirillkom/resume-router/internal/infrastructure/queue/nats"
	"github.com/kirillkom/resume-router/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/resume-router/internal/infrastructure/repository/sqlite"
	"github.com/kirillkom/resume-router/internal/infrastructure/resilience"
)

// newCompleter picks the LLM backend named by LLM_PROVIDER and puts it behind the breaker.
func newCompleter(ctx context.Context, cfg config.Config, executor *resilience.Executor, cl *closers) (ports.TextCompleter, error) {
	var completer ports.TextCompleter

	switch cfg.LLMProvider {
	case config.ProviderOpenRouter:
		completer = openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	case config.ProviderOllama:
		completer = ollama.New(cfg.OllamaURL, cfg.OllamaModel)
	case config.ProviderGemini:
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		cl.add(func() { _ = client.Close() })
		completer = client
	case config.ProviderBedrock:
		client, err := bedrock.New(ctx, cfg.BedrockRegion, cfg.BedrockModelID)
		if err != nil {
			return nil, fmt.Errorf("init bedrock: %w", err)
		}
		completer = client
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}

	return llm.WithBreaker(completer, executor, "llm."+cfg.LLMProvider), nil
}

func newMailTransport(cfg config.Config, logger *slog.Logger) ports.MailTransport {
	return smtp.New(smtp.Options{
		Host:     cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPassword,
		From:     cfg.Sender(),
		StartTLS: cfg.SMTPStartTLS,
		Timeout:  cfg.SMTPTimeout,
	}, logger)
}

// newJournal returns a nil journal for JOURNAL_DRIVER=none.
func newJournal(ctx context.Context, cfg config.Config, cl *closers) (ports.RunJournal, error) {
	switch cfg.JournalDriver {
	case config.JournalPostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		cl.add(func() { _ = db.Close() })
		repo := postgres.NewRunRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, nil
	case config.JournalSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		cl.add(func() { _ = repo.Close() })
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, nil
	default:
		return nil, nil
	}
}

func newQueue(cfg config.Config, role Role, executor *resilience.Executor, logger *slog.Logger, cl *closers) (*nats.Queue, error) {
	if cfg.DispatchMode != config.DispatchNATS || role == RoleCLI {
		return nil, nil
	}
	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	cl.add(queue.Close)
	return queue, nil
}

// newPool returns nil when the api hands documents to NATS instead.
func newPool(cfg config.Config, role Role, pipeline *usecase.PipelineUseCase, logger *slog.Logger) *local.Pool {
	if role == RoleAPI && cfg.DispatchMode == config.DispatchNATS {
		return nil
	}
	workers, queueSize := cfg.PipelineWorkers, cfg.PipelineQueueSize
	if role == RoleCLI {
		workers, queueSize = 1, 0
	}
	return local.New(pipeline, workers, queueSize, logger)
}

func newDispatcher(queue *nats.Queue, pool *local.Pool) ports.Dispatcher {
	if pool == nil {
		return queue
	}
	return pool
}
