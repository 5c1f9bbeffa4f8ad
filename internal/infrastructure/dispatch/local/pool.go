package local

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
)

var (
	errQueueFull = errors.New("pipeline queue is full")
	errClosed    = errors.New("pipeline pool is shut down")
)

// Pool runs accepted documents on a fixed set of goroutines fed by a bounded queue.
type Pool struct {
	runner ports.PipelineRunner
	logger *slog.Logger
	jobs   chan *domain.UploadedDocument
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(runner ports.PipelineRunner, workers, queueSize int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		runner: runner,
		logger: logger,
		jobs:   make(chan *domain.UploadedDocument, queueSize),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work(i)
	}
	return p
}

// Dispatch enqueues doc without blocking. The request context is not propagated to the run.
func (p *Pool) Dispatch(_ context.Context, doc *domain.UploadedDocument) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return domain.WrapError(domain.ErrTemporary, "dispatch", errClosed)
	}
	select {
	case p.jobs <- doc:
		return nil
	default:
		return domain.WrapError(domain.ErrTemporary, "dispatch", errQueueFull)
	}
}

func (p *Pool) Pending() int {
	return len(p.jobs)
}

// Shutdown stops intake and waits until every queued document has been run.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("pipeline_pool_shutdown_timeout", "pending", len(p.jobs))
		return ctx.Err()
	}
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for doc := range p.jobs {
		run := p.runner.Run(context.Background(), doc)
		p.logger.Debug("pipeline_job_done", "worker", id, "run_id", run.ID, "state", string(run.State))
	}
}
