package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

func testDocument() *domain.UploadedDocument {
	return &domain.UploadedDocument{
		ID:           "run-1",
		Key:          "run-1.pdf",
		Path:         "/uploads/run-1.pdf",
		Size:         2048,
		Extension:    ".pdf",
		OriginalName: "cv.pdf",
	}
}

func TestPipelineRunStates(t *testing.T) {
	tests := []struct {
		name          string
		extractor     *extractorFake
		classifier    *classifierFake
		notifier      *notifierFake
		wantState     domain.RunState
		wantNotifies  int
		wantClassifys int
	}{
		{
			name:          "success",
			extractor:     &extractorFake{valid: true, text: "Python developer"},
			classifier:    &classifierFake{domain: domain.DomainIT},
			notifier:      &notifierFake{sent: true},
			wantState:     domain.StateSuccess,
			wantNotifies:  1,
			wantClassifys: 1,
		},
		{
			name:       "invalid pdf",
			extractor:  &extractorFake{valid: false},
			classifier: &classifierFake{domain: domain.DomainIT},
			notifier:   &notifierFake{sent: true},
			wantState:  domain.StateExtractFailed,
		},
		{
			name:       "no text",
			extractor:  &extractorFake{valid: true, err: domain.WrapError(domain.ErrNoText, "extract", errors.New("empty"))},
			classifier: &classifierFake{domain: domain.DomainIT},
			notifier:   &notifierFake{sent: true},
			wantState:  domain.StateExtractFailed,
		},
		{
			name:          "classification failure",
			extractor:     &extractorFake{valid: true, text: "text"},
			classifier:    &classifierFake{err: domain.WrapError(domain.ErrClassification, "classify", errors.New("down"))},
			notifier:      &notifierFake{sent: true},
			wantState:     domain.StateClassifyFailed,
			wantClassifys: 1,
		},
		{
			name:          "notification failure",
			extractor:     &extractorFake{valid: true, text: "text"},
			classifier:    &classifierFake{domain: domain.DomainHR},
			notifier:      &notifierFake{sent: false},
			wantState:     domain.StateNotifyFailed,
			wantNotifies:  1,
			wantClassifys: 1,
		},
		{
			name:          "panic",
			extractor:     &extractorFake{valid: true, text: "text"},
			classifier:    &classifierFake{panics: true},
			notifier:      &notifierFake{sent: true},
			wantState:     domain.StateUnhandledError,
			wantClassifys: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			releaser := &releaseCounter{}
			observer := &observerFake{}
			uc := NewPipelineUseCase(releaser, tc.extractor, tc.classifier, tc.notifier, nil, observer, nil)

			run := uc.Run(context.Background(), testDocument())
			if run.State != tc.wantState {
				t.Fatalf("expected state %s, got %s (%s)", tc.wantState, run.State, run.Error)
			}
			if len(releaser.released) != 1 {
				t.Fatalf("expected exactly one release, got %d", len(releaser.released))
			}
			if tc.notifier.calls != tc.wantNotifies {
				t.Fatalf("expected %d notify calls, got %d", tc.wantNotifies, tc.notifier.calls)
			}
			if tc.classifier.calls != tc.wantClassifys {
				t.Fatalf("expected %d classify calls, got %d", tc.wantClassifys, tc.classifier.calls)
			}
			if observer.started != 1 || len(observer.finished) != 1 || observer.finished[0] != tc.wantState {
				t.Fatalf("unexpected observer calls: started=%d finished=%v", observer.started, observer.finished)
			}
			if tc.wantState != domain.StateSuccess && run.Error == "" {
				t.Fatalf("expected error detail for state %s", run.State)
			}
			if run.FinishedAt.Before(run.StartedAt) {
				t.Fatalf("finished before start: %v < %v", run.FinishedAt, run.StartedAt)
			}
		})
	}
}

func TestPipelinePassesAttributesToNotifier(t *testing.T) {
	notifier := &notifierFake{sent: true}
	uc := NewPipelineUseCase(&releaseCounter{}, &extractorFake{valid: true, text: "text"}, &classifierFake{domain: domain.DomainMultimedia}, notifier, nil, nil, nil)

	run := uc.Run(context.Background(), testDocument())
	if run.Domain != domain.DomainMultimedia {
		t.Fatalf("expected Multimedia, got %q", run.Domain)
	}
	if notifier.gotDomain != domain.DomainMultimedia {
		t.Fatalf("notifier received %q", notifier.gotDomain)
	}
	if len(notifier.attributes) != 2 || notifier.attributes[0].Value != "cv.pdf" || notifier.attributes[1].Value != "2048 bytes" {
		t.Fatalf("unexpected attributes %+v", notifier.attributes)
	}
}

func TestPipelineRecordsRunInJournal(t *testing.T) {
	journal := &journalFake{}
	uc := NewPipelineUseCase(&releaseCounter{}, &extractorFake{valid: false}, &classifierFake{}, &notifierFake{}, journal, nil, nil)

	uc.Run(context.Background(), testDocument())
	if len(journal.runs) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(journal.runs))
	}
	if journal.runs[0].State != domain.StateExtractFailed || journal.runs[0].ID != "run-1" {
		t.Fatalf("unexpected journal entry %+v", journal.runs[0])
	}
}

func TestPipelineJournalFailureDoesNotChangeOutcome(t *testing.T) {
	journal := &journalFake{err: errors.New("database is locked")}
	uc := NewPipelineUseCase(&releaseCounter{}, &extractorFake{valid: true, text: "x"}, &classifierFake{domain: domain.DomainIT}, &notifierFake{sent: true}, journal, nil, nil)

	run := uc.Run(context.Background(), testDocument())
	if run.State != domain.StateSuccess {
		t.Fatalf("expected success, got %s", run.State)
	}
}

func TestPipelineNilDocumentIsRejected(t *testing.T) {
	releaser := &releaseCounter{}
	uc := NewPipelineUseCase(releaser, &extractorFake{}, &classifierFake{}, &notifierFake{}, nil, nil, nil)

	run := uc.Run(context.Background(), nil)
	if run.State != domain.StateRejected {
		t.Fatalf("expected rejected, got %s", run.State)
	}
	if len(releaser.released) != 0 {
		t.Fatalf("expected no release for nil document")
	}
}

func TestPipelineEndToEndRoutesToDomainAndCleansUp(t *testing.T) {
	store := newStoreFake()
	intake := NewIntakeUseCase(store, 1024, nil)
	doc, err := intake.Acquire(context.Background(), domain.Upload{Filename: "cv.pdf", Body: strings.NewReader("%PDF-1.4")})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	completer := completerFunc(func(_ context.Context, prompt string, _ domain.CompletionOptions) (string, error) {
		if !strings.Contains(prompt, "Python développement") {
			return "unknown", nil
		}
		return "Domain: IT", nil
	})
	transport := &transportFake{}
	uc := NewPipelineUseCase(
		intake,
		&extractorFake{valid: true, text: "Python développement backend"},
		NewClassifierUseCase(completer, time.Second, nil),
		NewNotifierUseCase(testRecipients, transport, store, nil),
		nil,
		nil,
		nil,
	)

	run := uc.Run(context.Background(), doc)
	if run.State != domain.StateSuccess {
		t.Fatalf("expected success, got %s (%s)", run.State, run.Error)
	}
	if len(transport.sent) != 1 || transport.sent[0].To != "it@example.com" {
		t.Fatalf("expected one email to IT recipient, got %+v", transport.sent)
	}
	if store.has(doc.Key) {
		t.Fatalf("expected uploaded file to be removed")
	}
}

func TestPipelineClassificationTimeoutSkipsNotification(t *testing.T) {
	store := newStoreFake()
	intake := NewIntakeUseCase(store, 1024, nil)
	doc, err := intake.Acquire(context.Background(), domain.Upload{Filename: "cv.pdf", Body: strings.NewReader("%PDF-1.4")})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	completer := completerFunc(func(ctx context.Context, _ string, _ domain.CompletionOptions) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	transport := &transportFake{}
	uc := NewPipelineUseCase(
		intake,
		&extractorFake{valid: true, text: "text"},
		NewClassifierUseCase(completer, 10*time.Millisecond, nil),
		NewNotifierUseCase(testRecipients, transport, store, nil),
		nil,
		nil,
		nil,
	)

	run := uc.Run(context.Background(), doc)
	if run.State != domain.StateClassifyFailed {
		t.Fatalf("expected classify_failed, got %s", run.State)
	}
	if len(transport.sent) != 0 {
		t.Fatalf("expected no email, got %d", len(transport.sent))
	}
	if store.has(doc.Key) {
		t.Fatalf("expected uploaded file to be removed")
	}
}
