package nats

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("server.NewServer() error = %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func waitForSubscription(t *testing.T, ns *server.Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for ns.NumSubscriptions() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscription was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubscribeHandlesPendingDocumentsAfterCancel(t *testing.T) {
	ns := runServer(t)
	q, err := New(ns.ClientURL(), "documents.accepted.test", Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer q.Close()

	var (
		mu      sync.Mutex
		handled []string
	)
	started := make(chan struct{})
	unblock := make(chan struct{})
	handler := func(hctx context.Context, doc *domain.UploadedDocument) {
		mu.Lock()
		first := len(handled) == 0
		handled = append(handled, doc.ID)
		mu.Unlock()
		if first {
			close(started)
			<-unblock
		}
		if hctx.Err() != nil {
			t.Errorf("handler context for %s is cancelled", doc.ID)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- q.Subscribe(ctx, handler) }()
	waitForSubscription(t, ns)

	ids := []string{"doc-1", "doc-2", "doc-3", "doc-4", "doc-5"}
	for _, id := range ids {
		doc := &domain.UploadedDocument{ID: id, Key: id + ".pdf", Path: "uploads/" + id + ".pdf"}
		if err := q.Dispatch(context.Background(), doc); err != nil {
			t.Fatalf("Dispatch(%s) error = %v", id, err)
		}
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("first document was not delivered")
	}
	cancel()
	close(unblock)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Subscribe() did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != len(ids) {
		t.Fatalf("handled %d of %d documents: %v", len(handled), len(ids), handled)
	}
	for i, id := range ids {
		if handled[i] != id {
			t.Fatalf("handled[%d] = %s, want %s", i, handled[i], id)
		}
	}
}

func TestSubscribeReturnsOnCancelWithoutTraffic(t *testing.T) {
	ns := runServer(t)
	q, err := New(ns.ClientURL(), "documents.accepted.idle", Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- q.Subscribe(ctx, func(context.Context, *domain.UploadedDocument) {})
	}()
	waitForSubscription(t, ns)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Subscribe() did not return after cancel")
	}
}
