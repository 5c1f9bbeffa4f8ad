package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

func TestSubmitRejectsNonPDFBeforeWriting(t *testing.T) {
	store := newStoreFake()
	observer := &observerFake{}
	dispatcher := &dispatcherFake{}
	uc := NewSubmitUseCase(NewIntakeUseCase(store, 1024, nil), dispatcher, &runnerFake{}, observer, nil)

	_, err := uc.Submit(context.Background(), domain.Upload{Filename: "notes.txt", Body: strings.NewReader("hello")})
	if !domain.IsKind(err, domain.ErrRejectedInput) {
		t.Fatalf("expected ErrRejectedInput, got %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("expected no write for rejected upload")
	}
	if observer.rejected != 1 {
		t.Fatalf("expected rejection to be observed")
	}
	if len(dispatcher.docs) != 0 {
		t.Fatalf("expected no dispatch")
	}
}

func TestSubmitAcceptsUppercaseExtension(t *testing.T) {
	store := newStoreFake()
	dispatcher := &dispatcherFake{}
	uc := NewSubmitUseCase(NewIntakeUseCase(store, 1024, nil), dispatcher, &runnerFake{}, nil, nil)

	submission, err := uc.Submit(context.Background(), domain.Upload{Filename: "CV.PDF", Body: strings.NewReader("%PDF")})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(dispatcher.docs) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(dispatcher.docs))
	}
	if submission.RunID != dispatcher.docs[0].ID {
		t.Fatalf("expected run id %q, got %q", dispatcher.docs[0].ID, submission.RunID)
	}
	if !store.has(dispatcher.docs[0].Key) {
		t.Fatalf("expected document to stay stored for the background run")
	}
}

func TestSubmitDispatchFailureReleasesDocument(t *testing.T) {
	store := newStoreFake()
	dispatcher := &dispatcherFake{err: errors.New("queue full")}
	uc := NewSubmitUseCase(NewIntakeUseCase(store, 1024, nil), dispatcher, &runnerFake{}, nil, nil)

	_, err := uc.Submit(context.Background(), domain.Upload{Filename: "cv.pdf", Body: strings.NewReader("%PDF")})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if len(store.files) != 0 {
		t.Fatalf("expected stored document to be released, have %d", len(store.files))
	}
}

func TestSubmitStorageFailureIsObservedAsRejection(t *testing.T) {
	store := newStoreFake()
	store.saveErr = errors.New("read-only file system")
	observer := &observerFake{}
	uc := NewSubmitUseCase(NewIntakeUseCase(store, 1024, nil), &dispatcherFake{}, &runnerFake{}, observer, nil)

	_, err := uc.Submit(context.Background(), domain.Upload{Filename: "cv.pdf", Body: strings.NewReader("%PDF")})
	if !domain.IsKind(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if observer.rejected != 1 {
		t.Fatalf("expected rejection to be observed")
	}
}

func TestRouteNowRunsPipelineSynchronously(t *testing.T) {
	store := newStoreFake()
	runner := &runnerFake{state: domain.StateSuccess}
	uc := NewSubmitUseCase(NewIntakeUseCase(store, 1024, nil), &dispatcherFake{}, runner, nil, nil)

	run, err := uc.RouteNow(context.Background(), domain.Upload{Filename: "cv.pdf", Body: strings.NewReader("%PDF")})
	if err != nil {
		t.Fatalf("RouteNow() error = %v", err)
	}
	if run.State != domain.StateSuccess || len(runner.docs) != 1 {
		t.Fatalf("expected one successful run, got %+v", run)
	}
}

func TestRouteNowRejectsNonPDF(t *testing.T) {
	runner := &runnerFake{}
	uc := NewSubmitUseCase(NewIntakeUseCase(newStoreFake(), 1024, nil), &dispatcherFake{}, runner, nil, nil)

	run, err := uc.RouteNow(context.Background(), domain.Upload{Filename: "cv.docx", Body: strings.NewReader("x")})
	if err == nil || run.State != domain.StateRejected {
		t.Fatalf("expected rejected run, got %+v err=%v", run, err)
	}
	if len(runner.docs) != 0 {
		t.Fatalf("expected pipeline not to run")
	}
}
