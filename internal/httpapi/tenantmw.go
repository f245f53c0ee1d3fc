package httpapi

import (
	"context"
	"net/http"
	"strings"
)

const tenantHeader = "X-Tenant-Id"

const tenantKey ctxKey = "tenant_id"

// withTenant resolves the request's tenant from the X-Tenant-Id header or
// ?tenant query parameter, initializes its namespace and stores the
// normalized id in the context. Absence falls back to the default tenant.
func (a *API) withTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(tenantHeader))
		if raw == "" {
			raw = strings.TrimSpace(r.URL.Query().Get("tenant"))
		}
		tid, err := a.tenants.Ensure(r.Context(), raw)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "tenant initialization failed")
			return
		}
		ctx := context.WithValue(r.Context(), tenantKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantFrom returns the normalized tenant resolved by withTenant.
func tenantFrom(ctx context.Context) string {
	tid, _ := ctx.Value(tenantKey).(string)
	return tid
}

// explicitTenant reports whether the request named a tenant itself rather
// than inheriting the default. Export and audit endpoints demand this.
func explicitTenant(r *http.Request) bool {
	return strings.TrimSpace(r.Header.Get(tenantHeader)) != "" ||
		strings.TrimSpace(r.URL.Query().Get("tenant")) != ""
}
