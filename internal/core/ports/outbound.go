package ports

//go:generate mockgen -destination=mocks/outbound_mock.go -package=mocks . MailTransport,TextCompleter

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

// DocumentStore persists uploaded documents under generated keys.
type DocumentStore interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	Path(key string) string
}

// TextExtractor validates and reads plain text out of a stored document.
type TextExtractor interface {
	IsValid(ctx context.Context, path string) bool
	Extract(ctx context.Context, path string) (string, error)
}

// TextCompleter sends a prompt to an LLM backend and returns the raw reply.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error)
}

// MailTransport delivers one composed notification.
type MailTransport interface {
	Send(ctx context.Context, msg domain.Notification) error
}

// Dispatcher hands an accepted document to a background executor.
type Dispatcher interface {
	Dispatch(ctx context.Context, doc *domain.UploadedDocument) error
}

// RunJournal keeps an audit trail of finished pipeline runs.
type RunJournal interface {
	Save(ctx context.Context, run domain.PipelineRun) error
	GetByID(ctx context.Context, id string) (*domain.PipelineRun, error)
	List(ctx context.Context, limit int) ([]domain.PipelineRun, error)
}

// PipelineObserver receives pipeline timings and outcomes.
type PipelineObserver interface {
	StartRun()
	FinishRun(state domain.RunState, duration time.Duration)
	ObserveStage(stage domain.Stage, duration time.Duration)
	Rejected()
}
