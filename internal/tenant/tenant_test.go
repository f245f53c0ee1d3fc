package tenant

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestNormalize(t *testing.T) {
	svc := NewService("main", nil)
	cases := map[string]string{
		"":             "main",
		"   ":          "main",
		"Lexington":    "lexington",
		" Fort Worth ": "fort-worth",
		"café-motors":  "cafe-motors",
		"--main--":     "main",
		"UPPER_case.1": "upper-case-1",
	}
	for input, expected := range cases {
		if got := svc.Normalize(input); got != expected {
			t.Fatalf("Normalize(%q)=%q, want %q", input, got, expected)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	svc := NewService("main", nil)
	for _, raw := range []string{"", "Lexington", "Fort Worth", "déjà vu", "a--b"} {
		once := svc.Normalize(raw)
		if twice := svc.Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q vs %q", raw, once, twice)
		}
	}
}

func TestMatches(t *testing.T) {
	svc := NewService("main", nil)
	if !svc.Matches("Lexington", "lexington ") {
		t.Fatal("expected match after normalization")
	}
	if svc.Matches("lexington", "main") {
		t.Fatal("unexpected cross-tenant match")
	}
	if !svc.Matches("", "main") {
		t.Fatal("empty record tenant should normalize to default")
	}
}

func TestRequire(t *testing.T) {
	svc := NewService("main", nil)
	if _, err := svc.Require("  "); !errors.Is(err, ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
	id, err := svc.Require("Lexington")
	if err != nil || id != "lexington" {
		t.Fatalf("Require: id=%q err=%v", id, err)
	}
}

func TestAttachDoesNotMutate(t *testing.T) {
	svc := NewService("main", nil)
	in := map[string]any{"name": "Coach A"}
	out := svc.Attach(in, "Lexington")
	if out["tenantId"] != "lexington" {
		t.Fatalf("unexpected tenant: %v", out["tenantId"])
	}
	if _, ok := in["tenantId"]; ok {
		t.Fatal("input map was mutated")
	}
}

type countingNS struct {
	calls atomic.Int32
}

func (c *countingNS) EnsureNamespace(ctx context.Context, tenantID string) error {
	c.calls.Add(1)
	return nil
}

func TestEnsureInitializesOnce(t *testing.T) {
	ns := &countingNS{}
	svc := NewService("main", ns)
	for i := 0; i < 3; i++ {
		id, err := svc.Ensure(context.Background(), "Lexington")
		if err != nil || id != "lexington" {
			t.Fatalf("Ensure: id=%q err=%v", id, err)
		}
	}
	if got := ns.calls.Load(); got != 1 {
		t.Fatalf("expected one namespace init, got %d", got)
	}
}
