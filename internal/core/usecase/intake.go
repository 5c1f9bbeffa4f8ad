package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const DefaultMaxFileSize int64 = 10 * 1024 * 1024

type IntakeUseCase struct {
	store   ports.DocumentStore
	maxSize int64
	logger  *slog.Logger
	now     func() time.Time
}

func NewIntakeUseCase(store ports.DocumentStore, maxSize int64, logger *slog.Logger) *IntakeUseCase {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeUseCase{
		store:   store,
		maxSize: maxSize,
		logger:  logger,
		now:     time.Now,
	}
}

func (uc *IntakeUseCase) MaxSize() int64 { return uc.maxSize }

func (uc *IntakeUseCase) Acquire(ctx context.Context, upload domain.Upload) (*domain.UploadedDocument, error) {
	if upload.Body == nil {
		return nil, domain.WrapError(domain.ErrRejectedInput, "acquire", errors.New("empty upload body"))
	}
	if upload.Size > uc.maxSize {
		uc.logger.Warn("upload_rejected", "reason", "oversize", "size", upload.Size, "max_size", uc.maxSize)
		return nil, domain.WrapError(domain.ErrRejectedInput, "acquire", fmt.Errorf("file too large: %d bytes", upload.Size))
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	key := id + ext

	// One extra byte tells an undeclared oversize body apart from an exact fit.
	written, err := uc.store.Save(ctx, key, io.LimitReader(upload.Body, uc.maxSize+1))
	if err != nil {
		uc.removeQuietly(ctx, key)
		return nil, domain.WrapError(domain.ErrStorage, "acquire", fmt.Errorf("save upload: %w", err))
	}
	if written > uc.maxSize {
		uc.removeQuietly(ctx, key)
		uc.logger.Warn("upload_rejected", "reason", "oversize", "size", written, "max_size", uc.maxSize)
		return nil, domain.WrapError(domain.ErrRejectedInput, "acquire", fmt.Errorf("file too large: more than %d bytes", uc.maxSize))
	}

	doc := &domain.UploadedDocument{
		ID:           id,
		Key:          key,
		Path:         uc.store.Path(key),
		Size:         written,
		Extension:    ext,
		OriginalName: filepath.Base(upload.Filename),
		AcceptedAt:   uc.now().UTC(),
	}
	uc.logger.Info("upload_saved", "document_id", doc.ID, "path", doc.Path, "size", doc.Size)
	return doc, nil
}

// Release deletes the stored document. It is safe to call on an already removed document.
func (uc *IntakeUseCase) Release(ctx context.Context, doc *domain.UploadedDocument) {
	if doc == nil {
		return
	}
	if err := uc.store.Remove(ctx, doc.Key); err != nil {
		uc.logger.Error("upload_cleanup_failed", "document_id", doc.ID, "path", doc.Path, "error", err)
		return
	}
	uc.logger.Info("upload_removed", "document_id", doc.ID, "path", doc.Path)
}

// Adopt rebinds a document accepted by another process to this process's store,
// so extraction reads the same file that Release removes.
func (uc *IntakeUseCase) Adopt(doc *domain.UploadedDocument) *domain.UploadedDocument {
	if doc == nil {
		return nil
	}
	adopted := *doc
	adopted.Path = uc.store.Path(doc.Key)
	return &adopted
}

func (uc *IntakeUseCase) removeQuietly(ctx context.Context, key string) {
	if err := uc.store.Remove(ctx, key); err != nil {
		uc.logger.Error("upload_cleanup_failed", "key", key, "error", err)
	}
}
