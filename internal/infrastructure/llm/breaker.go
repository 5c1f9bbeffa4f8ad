package llm

import (
	"context"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
	"github.com/kirillkom/resume-router/internal/infrastructure/resilience"
)

type breakerCompleter struct {
	next      ports.TextCompleter
	executor  *resilience.Executor
	operation string
}

// WithBreaker routes every completion through the executor's breaker for operation.
func WithBreaker(next ports.TextCompleter, executor *resilience.Executor, operation string) ports.TextCompleter {
	if executor == nil {
		return next
	}
	if operation == "" {
		operation = "llm.complete"
	}
	return &breakerCompleter{next: next, executor: executor, operation: operation}
}

func (c *breakerCompleter) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	var reply string
	err := c.executor.Execute(ctx, c.operation, func(callCtx context.Context) error {
		var err error
		reply, err = c.next.Complete(callCtx, prompt, opts)
		return err
	}, countsAsBackendFailure)
	if err != nil {
		return "", err
	}
	return reply, nil
}
