package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

// RunRepository stores finished pipeline runs. It is an audit trail, not a work queue.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2024110501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	original_name TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	domain TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_state ON pipeline_runs(state);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RunRepository) Save(ctx context.Context, run domain.PipelineRun) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pipeline_runs (id, document_id, original_name, state, domain, error_message, started_at, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
	state = EXCLUDED.state,
	domain = EXCLUDED.domain,
	error_message = EXCLUDED.error_message,
	finished_at = EXCLUDED.finished_at
`,
		run.ID, run.DocumentID, run.OriginalName, string(run.State), string(run.Domain), run.Error,
		run.StartedAt, run.FinishedAt,
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
WHERE id = $1
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
LIMIT $1
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
		run   domain.PipelineRun
		state string
		label string
	)
	err := row.Scan(&run.ID, &run.DocumentID, &run.OriginalName, &state, &label, &run.Error, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return run, err
	}
	run.State = domain.RunState(state)
	run.Domain = domain.Domain(label)
	return run, nil
}
