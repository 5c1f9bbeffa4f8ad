package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const previewRunes = 200

type PreviewUseCase struct {
	intake     documentAcquirer
	extractor  ports.TextExtractor
	classifier documentClassifier
	logger     *slog.Logger
}

func NewPreviewUseCase(
	intake documentAcquirer,
	extractor ports.TextExtractor,
	classifier documentClassifier,
	logger *slog.Logger,
) *PreviewUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewUseCase{
		intake:     intake,
		extractor:  extractor,
		classifier: classifier,
		logger:     logger,
	}
}

// Preview extracts and classifies an upload without notifying anyone. The upload is always removed.
func (uc *PreviewUseCase) Preview(ctx context.Context, upload domain.Upload) (*domain.Preview, error) {
	doc, err := uc.intake.Acquire(ctx, upload)
	if err != nil {
		return nil, fmt.Errorf("acquire upload: %w", err)
	}
	defer uc.intake.Release(ctx, doc)

	text, err := uc.extractor.Extract(ctx, doc.Path)
	if err != nil {
		if domain.IsKind(err, domain.ErrExtraction) || domain.IsKind(err, domain.ErrNoText) {
			return nil, fmt.Errorf("extract text: %w", err)
		}
		return nil, domain.WrapError(domain.ErrExtraction, "extract text", err)
	}

	result := &domain.Preview{
		TextLength: utf8.RuneCountInString(text),
		Preview:    previewText(text),
	}
	d, err := uc.classifier.Classify(ctx, text)
	if err != nil {
		uc.logger.Warn("preview_unclassified", "document_id", doc.ID, "error", err)
		return result, nil
	}
	result.Domain = &d
	return result, nil
}

func previewText(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return string([]rune(text)[:previewRunes]) + "..."
}
