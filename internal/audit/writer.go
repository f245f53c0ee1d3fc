package audit

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/obs"
)

// Entry is one append-only audit record capturing before/after state of a
// mutation. Before and After are stored masked.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	TenantID  string    `json:"tenantId"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Before    any       `json:"before,omitempty"`
	After     any       `json:"after,omitempty"`
}

// Writer appends one JSON line per entry to the audit log.
type Writer struct {
	mu         sync.Mutex
	path       string
	maskFields []string
	now        func() time.Time
	notify     func(Entry)
}

// NewWriter builds a Writer targeting path. maskFields names the record
// fields whose values are always replaced.
func NewWriter(path string, maskFields []string) *Writer {
	return &Writer{path: path, maskFields: maskFields, now: time.Now}
}

// Notify registers a hook invoked with every masked entry after it is
// written. Used to fan entries out to live subscribers.
func (w *Writer) Notify(fn func(Entry)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.notify = fn
	w.mu.Unlock()
}

// Path returns the live log location, used by the retention sweep.
func (w *Writer) Path() string {
	if w == nil {
		return ""
	}
	return w.path
}

// Record masks and appends an entry. A nil Writer and any failure are
// silently tolerated apart from a log line; the caller's operation proceeds.
func (w *Writer) Record(ctx context.Context, e Entry) {
	if w == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = w.now().UTC()
	}
	e.Before = MaskRecord(e.Before, w.maskFields)
	e.After = MaskRecord(e.After, w.maskFields)

	data, err := json.Marshal(e)
	if err != nil {
		obs.Error("audit_marshal_failed", map[string]any{"action": e.Action})
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		obs.Error("audit_open_failed", map[string]any{"error": err.Error()})
		return
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		obs.Error("audit_write_failed", map[string]any{"error": err.Error()})
	}
	f.Close()
	if w.notify != nil {
		w.notify(e)
	}
}
