package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	if _, ok, err := fs.Load(ctx, "main", "inventory"); err != nil || ok {
		t.Fatalf("expected missing document, ok=%v err=%v", ok, err)
	}

	doc := []byte(`[{"id":"1"}]`)
	if err := fs.Save(ctx, "main", "inventory", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := fs.Load(ctx, "main", "inventory")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if string(got) != string(doc) {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := fs.Save(ctx, "main", "leads", []byte(`[]`)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	entries, err := os.ReadDir(filepath.Join(dir, "main"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("expected single live file, got %d", len(entries))
	}
}

func TestFileStoreArchiveNaming(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	fs.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }

	path, err := fs.Archive(context.Background(), "lexington", "leads", []byte(`[]`))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !strings.Contains(path, filepath.Join("archive", "lexington")) {
		t.Fatalf("archive outside cold storage dir: %s", path)
	}
	if !strings.Contains(filepath.Base(path), "leads-20260301T123000Z") {
		t.Fatalf("unexpected archive name: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("archive not written: %v", err)
	}
}

func TestEnsureNamespaceIdempotent(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := fs.EnsureNamespace(ctx, "lexington"); err != nil {
			t.Fatalf("EnsureNamespace: %v", err)
		}
	}
}
