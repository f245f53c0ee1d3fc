// Package collection implements the tenant-scoped CRUD pattern every domain
// resource is built from. The in-memory dataset is the source of truth
// within a process lifetime; every mutation persists the whole tenant
// collection back to durable storage before returning.
//
// No operation may read or write a record belonging to a different tenant
// than the one supplied, even when the caller knows a matching id.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/audit"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/ids"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/retention"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/store"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tenant"
)

const (
	// DefaultLimit bounds list pages when the caller does not ask for one.
	DefaultLimit = 50
	// MaxLimit is the hard ceiling for a single page.
	MaxLimit = 200
)

// Schema describes how one resource plugs into the generic pattern.
type Schema[T any] struct {
	// Name is the collection name used for storage and audit records.
	Name string
	// Meta exposes the shared record metadata embedded in T.
	Meta func(*T) *Meta
	// Missing returns the names of required fields absent from a payload.
	Missing func(T) []string
	// Sanitize cleans string fields in place before the record is stored.
	Sanitize func(*T)
	// Escape prepares a record for output.
	Escape func(T) T
	// UniqueKey optionally returns a field name and comparable value that
	// must be unique within a tenant. Empty value skips the check.
	UniqueKey func(T) (field, value string)
	// Validate optionally applies resource policy (status graphs, ranges).
	// prev is nil on create.
	Validate func(prev *T, next T) error
}

// Deps are the shared collaborators injected into every collection.
type Deps struct {
	Tenants *tenant.Service
	Store   store.Persister
	Audit   *audit.Writer
	Now     func() time.Time
}

// Collection is a tenant-isolated CRUD store for records of type T.
type Collection[T any] struct {
	schema  Schema[T]
	tenants *tenant.Service
	store   store.Persister
	audit   *audit.Writer
	now     func() time.Time

	mu     sync.Mutex
	items  map[string][]T
	loaded map[string]bool
}

// Page is one window of a tenant's collection.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// New builds a collection from its schema and shared dependencies.
func New[T any](schema Schema[T], deps Deps) *Collection[T] {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Collection[T]{
		schema:  schema,
		tenants: deps.Tenants,
		store:   deps.Store,
		audit:   deps.Audit,
		now:     now,
		items:   make(map[string][]T),
		loaded:  make(map[string]bool),
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.schema.Name }

// List returns tenant records matching the optional predicate, paginated
// and escaped for output.
func (c *Collection[T]) List(ctx context.Context, tenantID string, match func(T) bool, offset, limit int) (Page[T], error) {
	tid := c.tenants.Normalize(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx, tid); err != nil {
		return Page[T]{}, err
	}

	var filtered []T
	for _, it := range c.items[tid] {
		it := it
		if !c.tenants.Matches(c.schema.Meta(&it).TenantID, tid) {
			continue
		}
		if match != nil && !match(it) {
			continue
		}
		filtered = append(filtered, it)
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	total := len(filtered)
	page := Page[T]{Items: []T{}, Total: total, Limit: limit, Offset: offset}
	if offset >= total {
		return page, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	for _, it := range filtered[offset:end] {
		page.Items = append(page.Items, c.schema.Escape(it))
	}
	return page, nil
}

// FindByID returns the escaped record and whether it exists for this
// tenant. Absence is not an error; callers decide whether it is a 404.
func (c *Collection[T]) FindByID(ctx context.Context, tenantID, id string) (T, bool, error) {
	var zero T
	tid := c.tenants.Normalize(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx, tid); err != nil {
		return zero, false, err
	}
	idx := c.indexLocked(tid, id)
	if idx < 0 {
		return zero, false, nil
	}
	return c.schema.Escape(c.items[tid][idx]), true, nil
}

// Create validates, sanitizes and stores a new record stamped with the
// tenant and generated metadata, then returns the escaped record.
func (c *Collection[T]) Create(ctx context.Context, tenantID, actor string, payload T) (T, error) {
	var zero T
	tid := c.tenants.Normalize(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx, tid); err != nil {
		return zero, err
	}

	if c.schema.Sanitize != nil {
		c.schema.Sanitize(&payload)
	}
	if c.schema.Missing != nil {
		if missing := c.schema.Missing(payload); len(missing) > 0 {
			return zero, missingError(missing)
		}
	}
	if c.schema.Validate != nil {
		if err := c.schema.Validate(nil, payload); err != nil {
			return zero, err
		}
	}
	if err := c.uniqueLocked(tid, payload, -1); err != nil {
		return zero, err
	}

	meta := c.schema.Meta(&payload)
	now := c.now().UTC()
	meta.ID = ids.New()
	meta.TenantID = tid
	meta.CreatedAt = now
	meta.UpdatedAt = now

	next := append(append([]T(nil), c.items[tid]...), payload)
	if err := c.persistLocked(ctx, tid, next); err != nil {
		return zero, err
	}
	c.items[tid] = next

	c.audit.Record(ctx, audit.Entry{
		TenantID: tid,
		User:     actor,
		Action:   "create",
		Resource: c.schema.Name,
		After:    payload,
	})
	return c.schema.Escape(payload), nil
}

// Update applies mutate to a copy of the stored record, re-validates and
// persists it. The record's id, tenant and creation time are immutable.
func (c *Collection[T]) Update(ctx context.Context, tenantID, id, actor string, mutate func(*T) error) (T, error) {
	var zero T
	tid := c.tenants.Normalize(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx, tid); err != nil {
		return zero, err
	}
	idx := c.indexLocked(tid, id)
	if idx < 0 {
		return zero, ErrNotFound
	}

	prev := c.items[tid][idx]
	nextRec := prev
	if err := mutate(&nextRec); err != nil {
		return zero, &ValidationError{Message: "invalid payload: " + err.Error()}
	}
	if c.schema.Sanitize != nil {
		c.schema.Sanitize(&nextRec)
	}
	if c.schema.Missing != nil {
		if missing := c.schema.Missing(nextRec); len(missing) > 0 {
			return zero, missingError(missing)
		}
	}

	prevMeta := *c.schema.Meta(&prev)
	meta := c.schema.Meta(&nextRec)
	meta.ID = prevMeta.ID
	meta.TenantID = prevMeta.TenantID
	meta.CreatedAt = prevMeta.CreatedAt
	meta.UpdatedAt = c.now().UTC()

	if c.schema.Validate != nil {
		if err := c.schema.Validate(&prev, nextRec); err != nil {
			return zero, err
		}
	}
	if err := c.uniqueLocked(tid, nextRec, idx); err != nil {
		return zero, err
	}

	next := append([]T(nil), c.items[tid]...)
	next[idx] = nextRec
	if err := c.persistLocked(ctx, tid, next); err != nil {
		return zero, err
	}
	c.items[tid] = next

	c.audit.Record(ctx, audit.Entry{
		TenantID: tid,
		User:     actor,
		Action:   "update",
		Resource: c.schema.Name,
		Before:   prev,
		After:    nextRec,
	})
	return c.schema.Escape(nextRec), nil
}

// Remove deletes a tenant's record and returns it for audit purposes.
func (c *Collection[T]) Remove(ctx context.Context, tenantID, id, actor string) (T, error) {
	var zero T
	tid := c.tenants.Normalize(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx, tid); err != nil {
		return zero, err
	}
	idx := c.indexLocked(tid, id)
	if idx < 0 {
		return zero, ErrNotFound
	}

	removed := c.items[tid][idx]
	next := append([]T(nil), c.items[tid][:idx]...)
	next = append(next, c.items[tid][idx+1:]...)
	if err := c.persistLocked(ctx, tid, next); err != nil {
		return zero, err
	}
	c.items[tid] = next

	c.audit.Record(ctx, audit.Entry{
		TenantID: tid,
		User:     actor,
		Action:   "delete",
		Resource: c.schema.Name,
		Before:   removed,
	})
	return c.schema.Escape(removed), nil
}

// Export returns every record of the tenant, escaped. Used by the
// tenant-required export endpoints.
func (c *Collection[T]) Export(ctx context.Context, tenantID string) ([]T, error) {
	tid := c.tenants.Normalize(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx, tid); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(c.items[tid]))
	for _, it := range c.items[tid] {
		out = append(out, c.schema.Escape(it))
	}
	return out, nil
}

// ApplyRetention archives records created before cutoff across every tenant
// with persisted data and keeps the rest live. Records without a creation
// time are kept.
func (c *Collection[T]) ApplyRetention(ctx context.Context, cutoff time.Time) (int, error) {
	tenants, err := c.store.Tenants(ctx)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(tenants))
	for _, tid := range tenants {
		seen[tid] = true
	}
	for tid := range c.items {
		if !seen[tid] {
			tenants = append(tenants, tid)
			seen[tid] = true
		}
	}

	total := 0
	for _, tid := range tenants {
		if err := c.loadLocked(ctx, tid); err != nil {
			return total, err
		}
		archived, kept := retention.Partition(c.items[tid], cutoff, func(it T) (time.Time, bool) {
			ts := c.schema.Meta(&it).CreatedAt
			return ts, !ts.IsZero()
		})
		if len(archived) == 0 {
			continue
		}
		data, err := json.Marshal(archived)
		if err != nil {
			return total, fmt.Errorf("marshal archive %s/%s: %w", tid, c.schema.Name, err)
		}
		if _, err := c.store.Archive(ctx, tid, c.schema.Name, data); err != nil {
			return total, err
		}
		if err := c.persistLocked(ctx, tid, kept); err != nil {
			return total, err
		}
		c.items[tid] = kept
		total += len(archived)
	}
	return total, nil
}

var _ retention.Target = (*Collection[struct{ Meta }])(nil)

func (c *Collection[T]) loadLocked(ctx context.Context, tid string) error {
	if c.loaded[tid] {
		return nil
	}
	data, ok, err := c.store.Load(ctx, tid, c.schema.Name)
	if err != nil {
		return err
	}
	if ok {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode %s/%s: %w", tid, c.schema.Name, err)
		}
		c.items[tid] = items
	}
	c.loaded[tid] = true
	return nil
}

func (c *Collection[T]) persistLocked(ctx context.Context, tid string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", tid, c.schema.Name, err)
	}
	return c.store.Save(ctx, tid, c.schema.Name, data)
}

func (c *Collection[T]) indexLocked(tid, id string) int {
	for i := range c.items[tid] {
		m := c.schema.Meta(&c.items[tid][i])
		if m.ID == id && c.tenants.Matches(m.TenantID, tid) {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) uniqueLocked(tid string, rec T, skip int) error {
	if c.schema.UniqueKey == nil {
		return nil
	}
	field, value := c.schema.UniqueKey(rec)
	if value == "" {
		return nil
	}
	for i := range c.items[tid] {
		if i == skip {
			continue
		}
		_, other := c.schema.UniqueKey(c.items[tid][i])
		if other == value {
			return &ConflictError{Field: field, Value: value}
		}
	}
	return nil
}
