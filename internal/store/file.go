package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore persists each collection as <root>/<tenant>/<collection>.json.
// Writes go through a temp file and rename so a crash mid-write never
// corrupts the live document. Archives land under <root>/archive/<tenant>.
type FileStore struct {
	root string
	now  func() time.Time
}

// NewFileStore creates the store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir, now: time.Now}
}

// EnsureNamespace creates the tenant's directory. Idempotent.
func (f *FileStore) EnsureNamespace(ctx context.Context, tenantID string) error {
	return os.MkdirAll(filepath.Join(f.root, tenantID), 0o755)
}

func (f *FileStore) Load(ctx context.Context, tenantID, collection string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.livePath(tenantID, collection))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s/%s: %w", tenantID, collection, err)
	}
	return data, true, nil
}

func (f *FileStore) Save(ctx context.Context, tenantID, collection string, data []byte) error {
	dir := filepath.Join(f.root, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save %s/%s: %w", tenantID, collection, err)
	}
	tmp, err := os.CreateTemp(dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", tenantID, collection, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s/%s: %w", tenantID, collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s/%s: %w", tenantID, collection, err)
	}
	if err := os.Rename(tmp.Name(), f.livePath(tenantID, collection)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s/%s: %w", tenantID, collection, err)
	}
	return nil
}

func (f *FileStore) Archive(ctx context.Context, tenantID, collection string, data []byte) (string, error) {
	dir := filepath.Join(f.root, "archive", tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive %s/%s: %w", tenantID, collection, err)
	}
	name := fmt.Sprintf("%s-%s.json", collection, f.now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("archive %s/%s: %w", tenantID, collection, err)
	}
	return path, nil
}

func (f *FileStore) Tenants(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "archive" {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

func (f *FileStore) livePath(tenantID, collection string) string {
	return filepath.Join(f.root, tenantID, collection+".json")
}
