package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveOpenRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	written, err := store.Save(context.Background(), "a.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if written != 8 {
		t.Fatalf("expected 8 bytes written, got %d", written)
	}
	if store.Path("a.pdf") != filepath.Join(dir, "a.pdf") {
		t.Fatalf("unexpected path %q", store.Path("a.pdf"))
	}

	rc, err := store.Open(context.Background(), "a.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	raw, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", raw)
	}

	if err := store.Remove(context.Background(), "a.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, stat err = %v", err)
	}
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Remove(context.Background(), "missing.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
}

func TestSaveRefusesExistingKey(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := store.Save(context.Background(), "a.pdf", strings.NewReader("one")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Save(context.Background(), "a.pdf", strings.NewReader("two")); err == nil {
		t.Fatalf("expected second save under the same key to fail")
	}
}

func TestRejectsKeysOutsideBaseDir(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, key := range []string{"", "..", "../escape.pdf", "nested/a.pdf"} {
		if _, err := store.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
