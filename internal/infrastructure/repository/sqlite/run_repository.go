package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

// RunRepository is the single-node run journal. Timestamps are stored as unix nanoseconds.
type RunRepository struct {
	db *sql.DB
}

func Open(path string) (*RunRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	// sqlite serializes writers anyway; one connection keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	return &RunRepository{db: db}, nil
}

func (r *RunRepository) Close() error {
	return r.db.Close()
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	original_name TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	domain TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at DESC);
`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

func (r *RunRepository) Save(ctx context.Context, run domain.PipelineRun) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pipeline_runs (id, document_id, original_name, state, domain, error_message, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	state = excluded.state,
	domain = excluded.domain,
	error_message = excluded.error_message,
	finished_at = excluded.finished_at
`,
		run.ID, run.DocumentID, run.OriginalName, string(run.State), string(run.Domain), run.Error,
		run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save pipeline run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.PipelineRun, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, original_name, state, domain, error_message, started_at, finished_at
FROM pipeline_runs
WHERE id = ?
`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRunNotFound, "get pipeline run", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan pipeline run: %w", err)
	}
	return &run, nil
}

func (r *RunRepository) List(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, original_name, state, domain, error_message, started_at, finished_at
FROM pipeline_runs
ORDER BY started_at DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PipelineRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pipeline runs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.PipelineRun, error) {
	var (
		run               domain.PipelineRun
		state, label      string
		started, finished int64
	)
	if err := row.Scan(&run.ID, &run.DocumentID, &run.OriginalName, &state, &label, &run.Error, &started, &finished); err != nil {
		return run, err
	}
	run.State = domain.RunState(state)
	run.Domain = domain.Domain(label)
	run.StartedAt = time.Unix(0, started).UTC()
	run.FinishedAt = time.Unix(0, finished).UTC()
	return run, nil
}
