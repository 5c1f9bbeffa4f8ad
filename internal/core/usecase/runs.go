package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

const (
	defaultRunListLimit = 50
	maxRunListLimit     = 500
)

type RunQueryUseCase struct {
	journal ports.RunJournal
}

func NewRunQueryUseCase(journal ports.RunJournal) *RunQueryUseCase {
	return &RunQueryUseCase{journal: journal}
}

func (uc *RunQueryUseCase) GetRun(ctx context.Context, id string) (*domain.PipelineRun, error) {
	if uc.journal == nil {
		return nil, domain.WrapError(domain.ErrRunNotFound, "get run", errors.New("run journal disabled"))
	}
	run, err := uc.journal.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (uc *RunQueryUseCase) ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	if uc.journal == nil {
		return []domain.PipelineRun{}, nil
	}
	if limit <= 0 {
		limit = defaultRunListLimit
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}
	runs, err := uc.journal.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
