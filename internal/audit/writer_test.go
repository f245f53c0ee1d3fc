package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterAppendsMaskedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w := NewWriter(path, []string{"email"})
	w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	ctx := context.Background()
	w.Record(ctx, Entry{
		TenantID: "main",
		User:     "admin@sewell.example",
		Action:   "create",
		Resource: "leads",
		After:    map[string]any{"name": "Jo", "email": "jo@example.com"},
	})
	w.Record(ctx, Entry{TenantID: "main", User: "admin", Action: "delete", Resource: "leads"})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		lines = append(lines, e)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Timestamp.IsZero() || lines[0].TenantID != "main" {
		t.Fatalf("entry fields missing: %+v", lines[0])
	}
	after := lines[0].After.(map[string]any)
	if after["email"] != MaskToken {
		t.Fatalf("masked field leaked: %v", after["email"])
	}
	if after["name"] != "Jo" {
		t.Fatalf("unlisted field altered: %v", after["name"])
	}
}

func TestWriterFailureDoesNotPropagate(t *testing.T) {
	// Point the writer at a directory so the open fails.
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	w.Record(context.Background(), Entry{Action: "create"}) // must not panic

	var nilWriter *Writer
	nilWriter.Record(context.Background(), Entry{Action: "create"})
}
