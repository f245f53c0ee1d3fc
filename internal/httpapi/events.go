package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tenant"
)

// handleEvents streams one tenant's audit headlines over SSE. Like export
// and audit, it refuses the silent default tenant.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if !explicitTenant(r) {
		respondError(w, tenant.ErrTenantRequired)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternal, "streaming unsupported")
		return
	}
	tid := tenantFrom(r.Context())

	ch, cancel := a.events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-ch:
			if !open {
				return
			}
			if e.TenantID != tid {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
