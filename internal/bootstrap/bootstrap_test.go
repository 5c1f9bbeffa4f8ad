package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirillkom/resume-router/internal/config"
	"github.com/kirillkom/resume-router/internal/core/domain"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		LLMProvider:       config.ProviderOllama,
		OllamaURL:         "http://127.0.0.1:1",
		OllamaModel:       "llama3.1:8b",
		LLMTimeout:        time.Second,
		SMTPServer:        "127.0.0.1",
		SMTPPort:          2525,
		UploadDir:         filepath.Join(dir, "uploads"),
		MaxFileSize:       1 << 20,
		DispatchMode:      config.DispatchLocal,
		PipelineWorkers:   2,
		PipelineQueueSize: 4,
		JournalDriver:     config.JournalSQLite,
		SQLitePath:        filepath.Join(dir, "runs.db"),
		BreakerEnabled:    true,
	}
}

func TestNewWiresLocalAPI(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), RoleAPI, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Submitter == nil || app.Previewer == nil || app.Pipeline == nil || app.Runs == nil {
		t.Fatalf("expected use cases to be wired: %+v", app)
	}
	if app.Pool == nil {
		t.Fatalf("expected local pool in local dispatch mode")
	}
	if app.Queue != nil {
		t.Fatalf("did not expect a nats queue in local dispatch mode")
	}

	runs, err := app.Runs.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty journal, got %d runs", len(runs))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

// onePagePDF renders a single Helvetica text line.
func onePagePDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [4 0 R] /Count 1 >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents 5 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestRunQueuedReadsFromLocalUploadDir(t *testing.T) {
	cfg := testConfig(t)
	app, err := New(context.Background(), cfg, RoleAPI, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	local := filepath.Join(cfg.UploadDir, "queued.pdf")
	if err := os.WriteFile(local, onePagePDF("Python developer"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}

	// Path is where the publishing process stored the file; it does not exist here.
	doc := &domain.UploadedDocument{
		ID:           "queued",
		Key:          "queued.pdf",
		Path:         filepath.Join(t.TempDir(), "elsewhere", "queued.pdf"),
		Extension:    ".pdf",
		OriginalName: "cv.pdf",
		AcceptedAt:   time.Now().UTC(),
	}
	app.RunQueued(context.Background(), doc)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	run, err := app.Runs.GetRun(context.Background(), "queued")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	// The backend is unreachable, so reading the local file ends in classify_failed.
	if run.State != domain.StateClassifyFailed {
		t.Fatalf("expected %s, got %s (%s)", domain.StateClassifyFailed, run.State, run.Error)
	}
	if _, err := os.Stat(local); !os.IsNotExist(err) {
		t.Fatalf("expected local upload to be removed, stat err = %v", err)
	}
}

func TestNewRejectsWorkerWithoutNATS(t *testing.T) {
	if _, err := New(context.Background(), testConfig(t), RoleWorker, nil); err == nil {
		t.Fatalf("expected error for worker in local dispatch mode")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "watson"
	if _, err := New(context.Background(), cfg, RoleCLI, nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestClosersRunInReverseOrder(t *testing.T) {
	var order []int
	cl := &closers{}
	cl.add(func() { order = append(order, 1) })
	cl.add(func() { order = append(order, 2) })
	cl.closeAll()
	cl.closeAll()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("unexpected close order %v", order)
	}
}
