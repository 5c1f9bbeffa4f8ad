package ports

import (
	"context"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

// DocumentSubmitter accepts uploads for background routing.
type DocumentSubmitter interface {
	Submit(ctx context.Context, upload domain.Upload) (*domain.Submission, error)
	RouteNow(ctx context.Context, upload domain.Upload) (domain.PipelineRun, error)
}

// ClassificationPreviewer runs extraction and classification without notifying anyone.
type ClassificationPreviewer interface {
	Preview(ctx context.Context, upload domain.Upload) (*domain.Preview, error)
}

// PipelineRunner executes one pipeline run for an acquired document.
type PipelineRunner interface {
	Run(ctx context.Context, doc *domain.UploadedDocument) domain.PipelineRun
}

// RunReader is the read model over the run journal.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*domain.PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error)
}
