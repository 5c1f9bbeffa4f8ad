package pdftext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

const pdfMIME = "application/pdf"

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// IsValid reports whether path holds a PDF the parser can open.
func (e *Extractor) IsValid(_ context.Context, path string) (valid bool) {
	defer func() {
		if recover() != nil {
			valid = false
		}
	}()

	mt, err := mimetype.DetectFile(path)
	if err != nil || !mt.Is(pdfMIME) {
		return false
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	return r.NumPage() > 0
}

// Extract returns the plain text of every page in order, joined by newlines.
func (e *Extractor) Extract(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("parser panic: %v", rec))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("open pdf: %w", err))
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "extract pdf", err)
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("read page %d: %w", i, err))
		}
		pages = append(pages, content)
	}

	text = strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		return "", domain.WrapError(domain.ErrNoText, "extract pdf", errors.New("document has no text layer"))
	}
	return text, nil
}
