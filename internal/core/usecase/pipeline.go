package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const journalWriteTimeout = 5 * time.Second

type documentReleaser interface {
	Release(ctx context.Context, doc *domain.UploadedDocument)
}

type documentClassifier interface {
	Classify(ctx context.Context, text string) (domain.Domain, error)
}

type documentNotifier interface {
	Notify(ctx context.Context, d domain.Domain, doc *domain.UploadedDocument, attributes []domain.Attribute) bool
}

// PipelineUseCase runs validate, extract, classify and notify once per document
// and always releases the document afterwards.
type PipelineUseCase struct {
	intake     documentReleaser
	extractor  ports.TextExtractor
	classifier documentClassifier
	notifier   documentNotifier
	journal    ports.RunJournal
	observer   ports.PipelineObserver
	tracer     trace.Tracer
	logger     *slog.Logger
	now        func() time.Time
}

func NewPipelineUseCase(
	intake documentReleaser,
	extractor ports.TextExtractor,
	classifier documentClassifier,
	notifier documentNotifier,
	journal ports.RunJournal,
	observer ports.PipelineObserver,
	logger *slog.Logger,
) *PipelineUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineUseCase{
		intake:     intake,
		extractor:  extractor,
		classifier: classifier,
		notifier:   notifier,
		journal:    journal,
		observer:   observer,
		tracer:     otel.Tracer("github.com/kirillkom/resume-router/pipeline"),
		logger:     logger,
		now:        time.Now,
	}
}

func (uc *PipelineUseCase) Run(ctx context.Context, doc *domain.UploadedDocument) (run domain.PipelineRun) {
	if doc == nil {
		return domain.PipelineRun{State: domain.StateRejected, Error: "no document"}
	}

	run = domain.PipelineRun{
		ID:           doc.ID,
		DocumentID:   doc.ID,
		OriginalName: doc.OriginalName,
		StartedAt:    uc.now().UTC(),
	}
	logger := uc.logger.With("run_id", run.ID)

	ctx, span := uc.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(attribute.String("document.id", doc.ID)))
	uc.observer.StartRun()
	logger.Info("pipeline_started", "path", doc.Path)

	defer func() {
		if rec := recover(); rec != nil {
			run.State = domain.StateUnhandledError
			run.Error = fmt.Sprintf("panic: %v", rec)
			logger.Error("pipeline_panic", "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
		}

		uc.timed(ctx, domain.StageRelease, func(stageCtx context.Context) {
			uc.intake.Release(stageCtx, doc)
		})

		run.FinishedAt = uc.now().UTC()
		uc.observer.FinishRun(run.State, run.Duration())
		span.SetAttributes(attribute.String("pipeline.state", string(run.State)))
		span.End()

		uc.record(ctx, run, logger)
		uc.logOutcome(logger, run)
	}()

	state, d, err := uc.execute(ctx, doc)
	run.State = state
	run.Domain = d
	if err != nil {
		run.Error = err.Error()
	}
	return run
}

func (uc *PipelineUseCase) execute(ctx context.Context, doc *domain.UploadedDocument) (domain.RunState, domain.Domain, error) {
	if !uc.validate(ctx, doc) {
		return domain.StateExtractFailed, "", domain.WrapError(domain.ErrExtraction, "validate document", errors.New("not a readable pdf"))
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return domain.StateExtractFailed, "", err
	}

	d, err := uc.classify(ctx, text)
	if err != nil {
		return domain.StateClassifyFailed, "", err
	}

	if !uc.notify(ctx, d, doc) {
		return domain.StateNotifyFailed, d, domain.WrapError(domain.ErrNotification, "notify recipient", errors.New("delivery failed"))
	}
	return domain.StateSuccess, d, nil
}

func (uc *PipelineUseCase) validate(ctx context.Context, doc *domain.UploadedDocument) (valid bool) {
	uc.timed(ctx, domain.StageValidate, func(stageCtx context.Context) {
		valid = uc.extractor.IsValid(stageCtx, doc.Path)
	})
	return valid
}

func (uc *PipelineUseCase) extractText(ctx context.Context, doc *domain.UploadedDocument) (text string, err error) {
	uc.timed(ctx, domain.StageExtract, func(stageCtx context.Context) {
		text, err = uc.extractor.Extract(stageCtx, doc.Path)
	})
	if err != nil {
		if domain.IsKind(err, domain.ErrExtraction) || domain.IsKind(err, domain.ErrNoText) {
			return "", fmt.Errorf("extract text: %w", err)
		}
		return "", domain.WrapError(domain.ErrExtraction, "extract text", err)
	}
	return text, nil
}

func (uc *PipelineUseCase) classify(ctx context.Context, text string) (d domain.Domain, err error) {
	uc.timed(ctx, domain.StageClassify, func(stageCtx context.Context) {
		d, err = uc.classifier.Classify(stageCtx, text)
	})
	if err != nil {
		return "", fmt.Errorf("classify document: %w", err)
	}
	return d, nil
}

func (uc *PipelineUseCase) notify(ctx context.Context, d domain.Domain, doc *domain.UploadedDocument) (sent bool) {
	uc.timed(ctx, domain.StageNotify, func(stageCtx context.Context) {
		sent = uc.notifier.Notify(stageCtx, d, doc, candidateAttributes(doc))
	})
	return sent
}

func (uc *PipelineUseCase) timed(ctx context.Context, stage domain.Stage, fn func(context.Context)) {
	start := time.Now()
	stageCtx, span := uc.tracer.Start(ctx, "pipeline."+string(stage))
	defer func() {
		span.End()
		uc.observer.ObserveStage(stage, time.Since(start))
	}()
	fn(stageCtx)
}

func (uc *PipelineUseCase) record(ctx context.Context, run domain.PipelineRun, logger *slog.Logger) {
	if uc.journal == nil {
		return
	}
	journalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalWriteTimeout)
	defer cancel()
	if err := uc.journal.Save(journalCtx, run); err != nil {
		logger.Error("pipeline_journal_failed", "error", err)
	}
}

func (uc *PipelineUseCase) logOutcome(logger *slog.Logger, run domain.PipelineRun) {
	attrs := []any{
		"state", string(run.State),
		"domain", run.Domain.String(),
		"duration_ms", float64(run.Duration().Microseconds()) / 1000.0,
	}
	if run.Error != "" {
		attrs = append(attrs, "error", run.Error)
	}
	if run.State == domain.StateSuccess {
		logger.Info("pipeline_finished", attrs...)
		return
	}
	logger.Error("pipeline_finished", attrs...)
}

func candidateAttributes(doc *domain.UploadedDocument) []domain.Attribute {
	var attrs []domain.Attribute
	if doc.OriginalName != "" {
		attrs = append(attrs, domain.Attribute{Key: "Original file", Value: doc.OriginalName})
	}
	if doc.Size > 0 {
		attrs = append(attrs, domain.Attribute{Key: "File size", Value: fmt.Sprintf("%d bytes", doc.Size)})
	}
	return attrs
}

type noopObserver struct{}

func (noopObserver) StartRun()                                {}
func (noopObserver) FinishRun(domain.RunState, time.Duration) {}
func (noopObserver) ObserveStage(domain.Stage, time.Duration) {}
func (noopObserver) Rejected()                                {}
