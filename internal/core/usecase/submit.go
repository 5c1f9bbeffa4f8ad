package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const acceptedExtension = ".pdf"

type documentAcquirer interface {
	Acquire(ctx context.Context, upload domain.Upload) (*domain.UploadedDocument, error)
	Release(ctx context.Context, doc *domain.UploadedDocument)
}

type SubmitUseCase struct {
	intake     documentAcquirer
	dispatcher ports.Dispatcher
	runner     ports.PipelineRunner
	observer   ports.PipelineObserver
	logger     *slog.Logger
}

func NewSubmitUseCase(
	intake documentAcquirer,
	dispatcher ports.Dispatcher,
	runner ports.PipelineRunner,
	observer ports.PipelineObserver,
	logger *slog.Logger,
) *SubmitUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitUseCase{
		intake:     intake,
		dispatcher: dispatcher,
		runner:     runner,
		observer:   observer,
		logger:     logger,
	}
}

// Submit persists the upload and hands it to the background executor. Nobody waits for the run.
func (uc *SubmitUseCase) Submit(ctx context.Context, upload domain.Upload) (*domain.Submission, error) {
	doc, err := uc.accept(ctx, upload)
	if err != nil {
		return nil, err
	}

	if err := uc.dispatcher.Dispatch(ctx, doc); err != nil {
		uc.intake.Release(ctx, doc)
		uc.logger.Error("dispatch_failed", "document_id", doc.ID, "error", err)
		if domain.IsKind(err, domain.ErrTemporary) {
			return nil, fmt.Errorf("dispatch document: %w", err)
		}
		return nil, domain.WrapError(domain.ErrTemporary, "dispatch document", err)
	}

	uc.logger.Info("document_accepted", "document_id", doc.ID, "original_name", doc.OriginalName)
	return &domain.Submission{RunID: doc.ID, AcceptedAt: doc.AcceptedAt}, nil
}

// RouteNow runs the full pipeline synchronously and returns its outcome.
func (uc *SubmitUseCase) RouteNow(ctx context.Context, upload domain.Upload) (domain.PipelineRun, error) {
	doc, err := uc.accept(ctx, upload)
	if err != nil {
		return domain.PipelineRun{State: domain.StateRejected, Error: err.Error()}, err
	}
	return uc.runner.Run(ctx, doc), nil
}

func (uc *SubmitUseCase) accept(ctx context.Context, upload domain.Upload) (*domain.UploadedDocument, error) {
	if !strings.EqualFold(filepath.Ext(upload.Filename), acceptedExtension) {
		uc.observer.Rejected()
		uc.logger.Warn("upload_rejected", "reason", "extension", "filename", upload.Filename)
		return nil, domain.WrapError(domain.ErrRejectedInput, "submit", fmt.Errorf("file must be a PDF: %q", upload.Filename))
	}

	doc, err := uc.intake.Acquire(ctx, upload)
	if err != nil {
		uc.observer.Rejected()
		return nil, fmt.Errorf("acquire upload: %w", err)
	}
	return doc, nil
}
