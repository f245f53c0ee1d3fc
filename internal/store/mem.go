package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is a map-backed Persister for tests and ephemeral runs.
type MemStore struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	archives map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{
		docs:     make(map[string][]byte),
		archives: make(map[string][]byte),
	}
}

func (m *MemStore) EnsureNamespace(ctx context.Context, tenantID string) error { return nil }

func (m *MemStore) Load(ctx context.Context, tenantID, collection string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[tenantID+"/"+collection]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *MemStore) Save(ctx context.Context, tenantID, collection string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.docs[tenantID+"/"+collection] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemStore) Archive(ctx context.Context, tenantID, collection string, data []byte) (string, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	key := fmt.Sprintf("archive/%s/%s-%d", tenantID, collection, time.Now().UnixNano())
	m.mu.Lock()
	m.archives[key] = cp
	m.mu.Unlock()
	return key, nil
}

func (m *MemStore) Tenants(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for key := range m.docs {
		tenant, _, ok := strings.Cut(key, "/")
		if !ok || seen[tenant] {
			continue
		}
		seen[tenant] = true
		out = append(out, tenant)
	}
	sort.Strings(out)
	return out, nil
}

// ArchiveCount reports how many archive snapshots were written. Test helper.
func (m *MemStore) ArchiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.archives)
}
