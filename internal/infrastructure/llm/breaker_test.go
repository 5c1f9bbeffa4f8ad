package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports/mocks"
	"github.com/kirillkom/resume-router/internal/infrastructure/resilience"
)

func TestWithBreakerOpensOnBackendFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockTextCompleter(ctrl)
	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", &StatusError{Provider: "openrouter", StatusCode: http.StatusBadGateway}).
		Times(2)

	exec := resilience.NewExecutor(resilience.Config{BreakerEnabled: true, BreakerMinRequests: 2, BreakerFailureRatio: 0.5}, nil)
	wrapped := WithBreaker(completer, exec, "llm.test")

	for i := 0; i < 2; i++ {
		if _, err := wrapped.Complete(context.Background(), "p", domain.CompletionOptions{}); err == nil {
			t.Fatalf("expected backend error on call %d", i)
		}
	}

	_, err := wrapped.Complete(context.Background(), "p", domain.CompletionOptions{})
	if !resilience.IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestWithBreakerIgnoresClientErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockTextCompleter(ctrl)
	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", &StatusError{Provider: "openrouter", StatusCode: http.StatusUnauthorized}).
		Times(5)

	exec := resilience.NewExecutor(resilience.Config{BreakerEnabled: true, BreakerMinRequests: 2}, nil)
	wrapped := WithBreaker(completer, exec, "llm.test")

	for i := 0; i < 5; i++ {
		_, err := wrapped.Complete(context.Background(), "p", domain.CompletionOptions{})
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected status error on call %d, got %v", i, err)
		}
	}
}

func TestWithBreakerIgnoresEmptyCompletions(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockTextCompleter(ctrl)
	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("openrouter chat completion: %w", ErrEmptyCompletion)).
		Times(5)

	exec := resilience.NewExecutor(resilience.Config{BreakerEnabled: true, BreakerMinRequests: 2, BreakerFailureRatio: 0.5}, nil)
	wrapped := WithBreaker(completer, exec, "llm.test")

	for i := 0; i < 5; i++ {
		_, err := wrapped.Complete(context.Background(), "p", domain.CompletionOptions{})
		if !errors.Is(err, ErrEmptyCompletion) {
			t.Fatalf("expected empty completion on call %d, got %v", i, err)
		}
	}
}

func TestWithBreakerPassesReplyThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockTextCompleter(ctrl)
	opts := domain.CompletionOptions{Temperature: 0.1, MaxTokens: 100}
	completer.EXPECT().Complete(gomock.Any(), "prompt", opts).Return("Domain: IT", nil)

	wrapped := WithBreaker(completer, resilience.NewExecutor(resilience.DefaultConfig(), nil), "")
	reply, err := wrapped.Complete(context.Background(), "prompt", opts)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Domain: IT" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Provider: "ollama", StatusCode: http.StatusBadGateway, Body: " model unavailable "}
	if got := err.Error(); got != "ollama status 502 Bad Gateway: model unavailable" {
		t.Fatalf("unexpected message %q", got)
	}
}
