package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const DefaultClassifyTimeout = 30 * time.Second

var classifyOptions = domain.CompletionOptions{
	Temperature: 0.1,
	MaxTokens:   100,
}

type ClassifierUseCase struct {
	completer ports.TextCompleter
	timeout   time.Duration
	logger    *slog.Logger
}

func NewClassifierUseCase(completer ports.TextCompleter, timeout time.Duration, logger *slog.Logger) *ClassifierUseCase {
	if timeout <= 0 {
		timeout = DefaultClassifyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifierUseCase{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
}

// Classify asks the LLM backend for a domain. Every failure is an ErrClassification.
func (uc *ClassifierUseCase) Classify(ctx context.Context, text string) (domain.Domain, error) {
	prompt := buildClassificationPrompt(TruncateForPrompt(text))

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	reply, err := uc.completer.Complete(callCtx, prompt, classifyOptions)
	if err != nil {
		uc.logger.Error("classification_backend_failed", "error", err)
		return "", domain.WrapError(domain.ErrClassification, "classify", fmt.Errorf("llm completion: %w", err))
	}

	d, ok := ParseDomainReply(reply)
	if !ok {
		uc.logger.Warn("classification_unparseable", "reply", reply)
		return "", domain.WrapError(domain.ErrClassification, "classify", fmt.Errorf("unparseable reply %q", reply))
	}

	uc.logger.Info("classification_done", "domain", d.String())
	return d, nil
}
