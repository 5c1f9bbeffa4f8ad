package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

type storeFake struct {
	mu        sync.Mutex
	files     map[string][]byte
	saveErr   error
	removeErr error
	saves     int
	removes   []string
}

func newStoreFake() *storeFake {
	return &storeFake{files: map[string][]byte{}}
}

func (f *storeFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.files[key] = raw
	return int64(len(raw)), nil
}

func (f *storeFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storeFake) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, key)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.files, key)
	return nil
}

func (f *storeFake) Path(key string) string { return "/uploads/" + key }

func (f *storeFake) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[key]
	return ok
}

func (f *storeFake) removeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.removes)
}

type extractorFake struct {
	valid     bool
	text      string
	err       error
	extracted int
}

func (f *extractorFake) IsValid(context.Context, string) bool { return f.valid }

func (f *extractorFake) Extract(context.Context, string) (string, error) {
	f.extracted++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type classifierFake struct {
	domain domain.Domain
	err    error
	panics bool
	calls  int
}

func (f *classifierFake) Classify(context.Context, string) (domain.Domain, error) {
	f.calls++
	if f.panics {
		panic("classifier exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.domain, nil
}

type notifierFake struct {
	sent       bool
	calls      int
	gotDomain  domain.Domain
	attributes []domain.Attribute
}

func (f *notifierFake) Notify(_ context.Context, d domain.Domain, _ *domain.UploadedDocument, attrs []domain.Attribute) bool {
	f.calls++
	f.gotDomain = d
	f.attributes = attrs
	return f.sent
}

type releaseCounter struct {
	released []string
}

func (r *releaseCounter) Release(_ context.Context, doc *domain.UploadedDocument) {
	r.released = append(r.released, doc.ID)
}

type completerFunc func(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	return f(ctx, prompt, opts)
}

type transportFake struct {
	err  error
	sent []domain.Notification
}

func (f *transportFake) Send(_ context.Context, msg domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type journalFake struct {
	runs []domain.PipelineRun
	err  error
}

func (f *journalFake) Save(_ context.Context, run domain.PipelineRun) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *journalFake) GetByID(_ context.Context, id string) (*domain.PipelineRun, error) {
	for _, run := range f.runs {
		if run.ID == id {
			copyRun := run
			return &copyRun, nil
		}
	}
	return nil, domain.WrapError(domain.ErrRunNotFound, "get", errors.New(id))
}

func (f *journalFake) List(_ context.Context, limit int) ([]domain.PipelineRun, error) {
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}

type observerFake struct {
	started  int
	finished []domain.RunState
	stages   []domain.Stage
	rejected int
}

func (f *observerFake) StartRun() { f.started++ }

func (f *observerFake) FinishRun(state domain.RunState, _ time.Duration) {
	f.finished = append(f.finished, state)
}

func (f *observerFake) ObserveStage(stage domain.Stage, _ time.Duration) {
	f.stages = append(f.stages, stage)
}

func (f *observerFake) Rejected() { f.rejected++ }

type dispatcherFake struct {
	docs []*domain.UploadedDocument
	err  error
}

func (f *dispatcherFake) Dispatch(_ context.Context, doc *domain.UploadedDocument) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

type runnerFake struct {
	state domain.RunState
	docs  []*domain.UploadedDocument
}

func (f *runnerFake) Run(_ context.Context, doc *domain.UploadedDocument) domain.PipelineRun {
	f.docs = append(f.docs, doc)
	return domain.PipelineRun{ID: doc.ID, DocumentID: doc.ID, State: f.state}
}
