// Package tenant resolves and stamps the namespace every record lives in.
// All reads and writes across the service are filtered through this package;
// nothing else decides which tenant a request touches.
package tenant

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrTenantRequired is returned by Require when a request carries no
// resolvable tenant and the endpoint does not allow the silent default.
var ErrTenantRequired = errors.New("tenant: tenant required")

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Namespacer prepares durable storage for a tenant on first use.
type Namespacer interface {
	EnsureNamespace(ctx context.Context, tenantID string) error
}

// Service normalizes tenant identifiers and lazily initializes tenant
// storage namespaces.
type Service struct {
	def string
	ns  Namespacer

	mu   sync.Mutex
	seen map[string]bool
}

// NewService builds a Service with the given default tenant. ns may be nil
// when no storage preparation is needed (tests).
func NewService(def string, ns Namespacer) *Service {
	def = slugify(def)
	if def == "" {
		def = "main"
	}
	return &Service{def: def, ns: ns, seen: make(map[string]bool)}
}

// Default returns the fallback tenant identifier.
func (s *Service) Default() string { return s.def }

// Normalize trims, lower-cases and slugifies the input, falling back to the
// default tenant when nothing usable remains. It never fails and is
// idempotent.
func (s *Service) Normalize(raw string) string {
	id := slugify(raw)
	if id == "" {
		return s.def
	}
	return id
}

// Matches reports whether a record's tenant equals the requested tenant
// after normalization. Used as the filter predicate everywhere.
func (s *Service) Matches(recordTenant, requested string) bool {
	return s.Normalize(recordTenant) == s.Normalize(requested)
}

// Require resolves a tenant that must be explicitly present. Empty input is
// an error rather than the silent default.
func (s *Service) Require(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrTenantRequired
	}
	id := slugify(raw)
	if id == "" {
		return "", ErrTenantRequired
	}
	return id, nil
}

// Attach returns a shallow copy of record with tenantId set to the
// normalized value. The input map is not mutated.
func (s *Service) Attach(record map[string]any, tenantID string) map[string]any {
	out := make(map[string]any, len(record)+1)
	for k, v := range record {
		out[k] = v
	}
	out["tenantId"] = s.Normalize(tenantID)
	return out
}

// Ensure normalizes the tenant and initializes its storage namespace the
// first time it is seen. Initializing an existing tenant is a no-op.
func (s *Service) Ensure(ctx context.Context, raw string) (string, error) {
	id := s.Normalize(raw)
	if s.ns == nil {
		return id, nil
	}
	s.mu.Lock()
	ready := s.seen[id]
	s.mu.Unlock()
	if ready {
		return id, nil
	}
	if err := s.ns.EnsureNamespace(ctx, id); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.seen[id] = true
	s.mu.Unlock()
	return id, nil
}

// slugify lower-cases, strips accent marks and collapses anything outside
// [a-z0-9] into single hyphens.
func slugify(raw string) string {
	t := norm.NFD.String(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.ToLower(b.String())
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
