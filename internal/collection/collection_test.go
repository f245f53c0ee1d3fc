package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/sanitize"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/store"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tenant"
)

type coach struct {
	Meta
	Name        string `json:"name"`
	StockNumber string `json:"stockNumber,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func coachSchema() Schema[coach] {
	return Schema[coach]{
		Name: "inventory",
		Meta: func(c *coach) *Meta { return &c.Meta },
		Missing: func(c coach) []string {
			var missing []string
			if c.Name == "" {
				missing = append(missing, "name")
			}
			if c.StockNumber == "" {
				missing = append(missing, "stockNumber")
			}
			return missing
		},
		Sanitize: func(c *coach) {
			c.Name = sanitize.Input(c.Name)
			c.StockNumber = sanitize.Input(c.StockNumber)
			c.Notes = sanitize.Input(c.Notes)
		},
		Escape: func(c coach) coach {
			c.Name = sanitize.Output(c.Name)
			c.Notes = sanitize.Output(c.Notes)
			return c
		},
		UniqueKey: func(c coach) (string, string) {
			return "stockNumber", strings.ToLower(c.StockNumber)
		},
	}
}

func newTestCollection(t *testing.T) (*Collection[coach], *store.MemStore) {
	t.Helper()
	ms := store.NewMemStore()
	deps := Deps{
		Tenants: tenant.NewService("main", ms),
		Store:   ms,
	}
	return New(coachSchema(), deps), ms
}

func TestTenantIsolation(t *testing.T) {
	col, _ := newTestCollection(t)
	ctx := context.Background()

	created, err := col.Create(ctx, "main", "admin", coach{Name: "Coach A", StockNumber: "D100"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, found, err := col.FindByID(ctx, "lexington", created.ID); err != nil || found {
		t.Fatalf("cross-tenant FindByID must miss: found=%v err=%v", found, err)
	}
	page, err := col.List(ctx, "lexington", nil, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("cross-tenant List leaked records: %+v", page)
	}

	if _, found, err := col.FindByID(ctx, "main", created.ID); err != nil || !found {
		t.Fatalf("same-tenant FindByID missed: found=%v err=%v", found, err)
	}
}

func TestCreateReadRoundTrip(t *testing.T) {
	col, _ := newTestCollection(t)
	ctx := context.Background()

	created, err := col.Create(ctx, "Main", "admin", coach{Name: "  <b>Coach A</b> ", StockNumber: "D100"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.TenantID != "main" {
		t.Fatalf("metadata not stamped: %+v", created.Meta)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("timestamps not stamped")
	}
	if created.Name != "Coach A" {
		t.Fatalf("input not sanitized: %q", created.Name)
	}

	got, found, err := col.FindByID(ctx, "main", created.ID)
	if err != nil || !found {
		t.Fatalf("FindByID: found=%v err=%v", found, err)
	}
	if got.Name != created.Name || got.StockNumber != "D100" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestValidationNamesEveryMissingField(t *testing.T) {
	col, _ := newTestCollection(t)

	_, err := col.Create(context.Background(), "main", "admin", coach{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	msg := verr.Error()
	if !strings.Contains(msg, "name") || !strings.Contains(msg, "stockNumber") {
		t.Fatalf("message must name both fields: %q", msg)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected both fields listed: %v", verr.Fields)
	}
}

func TestUniquenessPerTenant(t *testing.T) {
	col, _ := newTestCollection(t)
	ctx := context.Background()

	if _, err := col.Create(ctx, "main", "admin", coach{Name: "A", StockNumber: "D100"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := col.Create(ctx, "main", "admin", coach{Name: "B", StockNumber: "d100"})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if cerr.Field != "stockNumber" {
		t.Fatalf("unexpected conflict field: %s", cerr.Field)
	}

	// Same value in another tenant is fine.
	if _, err := col.Create(ctx, "lexington", "admin", coach{Name: "C", StockNumber: "D100"}); err != nil {
		t.Fatalf("cross-tenant create: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ms := store.NewMemStore()
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	col := New(coachSchema(), Deps{
		Tenants: tenant.NewService("main", ms),
		Store:   ms,
		Now:     func() time.Time { return current },
	})
	ctx := context.Background()

	created, err := col.Create(ctx, "main", "admin", coach{Name: "A", StockNumber: "D100"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := col.Update(ctx, "main", "missing-id", "admin", func(c *coach) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := col.Update(ctx, "lexington", created.ID, "admin", func(c *coach) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-tenant update must be ErrNotFound, got %v", err)
	}

	current = current.Add(time.Hour)
	updated, err := col.Update(ctx, "main", created.ID, "admin", func(c *coach) error {
		c.Name = "Renamed"
		c.TenantID = "other" // must be ignored
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("field not merged: %+v", updated)
	}
	if updated.TenantID != "main" || updated.ID != created.ID {
		t.Fatalf("immutable metadata changed: %+v", updated.Meta)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("updatedAt not bumped: %+v", updated.Meta)
	}
}

func TestUpdateUniqueConflict(t *testing.T) {
	col, _ := newTestCollection(t)
	ctx := context.Background()

	if _, err := col.Create(ctx, "main", "admin", coach{Name: "A", StockNumber: "D100"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := col.Create(ctx, "main", "admin", coach{Name: "B", StockNumber: "D200"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = col.Update(ctx, "main", second.ID, "admin", func(c *coach) error {
		c.StockNumber = "D100"
		return nil
	})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	// Updating a record without changing its unique value is not a conflict.
	if _, err := col.Update(ctx, "main", second.ID, "admin", func(c *coach) error {
		c.Name = "B2"
		return nil
	}); err != nil {
		t.Fatalf("self update: %v", err)
	}
}

func TestRemove(t *testing.T) {
	col, _ := newTestCollection(t)
	ctx := context.Background()

	created, err := col.Create(ctx, "main", "admin", coach{Name: "A", StockNumber: "D100"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := col.Remove(ctx, "lexington", created.ID, "admin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-tenant remove must be ErrNotFound, got %v", err)
	}
	removed, err := col.Remove(ctx, "main", created.ID, "admin")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.ID != created.ID {
		t.Fatalf("removed record mismatch: %+v", removed)
	}
	if _, found, _ := col.FindByID(ctx, "main", created.ID); found {
		t.Fatal("record still present after remove")
	}
	if _, err := col.Remove(ctx, "main", created.ID, "admin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double remove must be ErrNotFound, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	col, _ := newTestCollection(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		payload := coach{Name: fmt.Sprintf("Coach %d", i), StockNumber: fmt.Sprintf("D%d", i)}
		if _, err := col.Create(ctx, "main", "admin", payload); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	page, err := col.List(ctx, "main", nil, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 2 || page.Offset != 2 || page.Limit != 2 {
		t.Fatalf("unexpected page: total=%d items=%d", page.Total, len(page.Items))
	}

	// Offset past the end returns an empty page, not an error.
	tail, err := col.List(ctx, "main", nil, 10, 2)
	if err != nil || len(tail.Items) != 0 || tail.Total != 5 {
		t.Fatalf("tail page: %+v err=%v", tail, err)
	}

	filtered, err := col.List(ctx, "main", func(c coach) bool { return c.StockNumber == "D3" }, 0, 0)
	if err != nil || filtered.Total != 1 {
		t.Fatalf("filtered list: %+v err=%v", filtered, err)
	}
}

func TestPersistenceSurvivesReload(t *testing.T) {
	ms := store.NewMemStore()
	tenants := tenant.NewService("main", ms)
	deps := Deps{Tenants: tenants, Store: ms}
	ctx := context.Background()

	first := New(coachSchema(), deps)
	created, err := first.Create(ctx, "main", "admin", coach{Name: "A", StockNumber: "D100"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A fresh collection over the same store sees the persisted record.
	second := New(coachSchema(), deps)
	got, found, err := second.FindByID(ctx, "main", created.ID)
	if err != nil || !found {
		t.Fatalf("reload FindByID: found=%v err=%v", found, err)
	}
	if got.StockNumber != "D100" {
		t.Fatalf("reload mismatch: %+v", got)
	}
}

func TestApplyRetention(t *testing.T) {
	ms := store.NewMemStore()
	current := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	col := New(coachSchema(), Deps{
		Tenants: tenant.NewService("main", ms),
		Store:   ms,
		Now:     func() time.Time { return current },
	})
	ctx := context.Background()

	// 40 days old: archived. 10 days old: kept.
	current = current.Add(-40 * 24 * time.Hour)
	if _, err := col.Create(ctx, "main", "admin", coach{Name: "Old", StockNumber: "D1"}); err != nil {
		t.Fatalf("create old: %v", err)
	}
	current = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Add(-10 * 24 * time.Hour)
	if _, err := col.Create(ctx, "main", "admin", coach{Name: "New", StockNumber: "D2"}); err != nil {
		t.Fatalf("create new: %v", err)
	}
	current = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	cutoff := current.Add(-30 * 24 * time.Hour)
	archived, err := col.ApplyRetention(ctx, cutoff)
	if err != nil {
		t.Fatalf("ApplyRetention: %v", err)
	}
	if archived != 1 {
		t.Fatalf("expected 1 archived, got %d", archived)
	}
	if ms.ArchiveCount() != 1 {
		t.Fatalf("expected archive snapshot, got %d", ms.ArchiveCount())
	}

	page, err := col.List(ctx, "main", nil, 0, 0)
	if err != nil || page.Total != 1 {
		t.Fatalf("kept slice wrong: %+v err=%v", page, err)
	}
	if page.Items[0].Name != "New" {
		t.Fatalf("wrong record kept: %+v", page.Items[0])
	}

	// Second sweep over the same window archives nothing new.
	again, err := col.ApplyRetention(ctx, cutoff)
	if err != nil || again != 0 {
		t.Fatalf("retention not idempotent: archived=%d err=%v", again, err)
	}
}

func TestRetentionKeepsRecordsWithoutDates(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	// Seed a raw document whose record has no createdAt.
	doc := `[{"id":"x1","tenantId":"main","name":"Dateless","stockNumber":"D9"}]`
	if err := ms.Save(ctx, "main", "inventory", []byte(doc)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	col := New(coachSchema(), Deps{Tenants: tenant.NewService("main", ms), Store: ms})

	archived, err := col.ApplyRetention(ctx, time.Now())
	if err != nil {
		t.Fatalf("ApplyRetention: %v", err)
	}
	if archived != 0 {
		t.Fatalf("dateless record must be kept, archived=%d", archived)
	}
	if _, found, _ := col.FindByID(ctx, "main", "x1"); !found {
		t.Fatal("dateless record missing after sweep")
	}
}
