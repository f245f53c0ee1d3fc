package httpapi

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/audit"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tenant"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tools"
)

// handleExport dumps every collection of one explicitly named tenant,
// masked the same way the audit log is. The default-tenant fallback is
// disabled here: an export must say whose data it wants.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if !explicitTenant(r) {
		respondError(w, tenant.ErrTenantRequired)
		return
	}
	tid := tenantFrom(r.Context())

	out := make(map[string]any)
	collect := func(name string, export func() (any, error)) bool {
		items, err := export()
		if err != nil {
			respondError(w, err)
			return false
		}
		out[name] = audit.MaskRecord(items, a.maskFields)
		return true
	}
	ctx := r.Context()
	ok := collect("inventory", func() (any, error) { return a.dealer.Inventory.Export(ctx, tid) }) &&
		collect("leads", func() (any, error) { return a.dealer.Leads.Export(ctx, tid) }) &&
		collect("customers", func() (any, error) { return a.dealer.Customers.Export(ctx, tid) }) &&
		collect("reviews", func() (any, error) { return a.dealer.Reviews.Export(ctx, tid) }) &&
		collect("campaigns", func() (any, error) { return a.dealer.Campaigns.Export(ctx, tid) }) &&
		collect("pages", func() (any, error) { return a.dealer.Pages.Export(ctx, tid) }) &&
		collect("redirects", func() (any, error) { return a.dealer.Redirects.Export(ctx, tid) }) &&
		collect("tickets", func() (any, error) { return a.dealer.Tickets.Export(ctx, tid) })
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenantId": tid, "collections": out})
}

// handleAuditRead returns the audit trail of one explicitly named tenant.
// Lines that do not parse are skipped on read; the retention sweep, not the
// reader, decides their fate.
func (a *API) handleAuditRead(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if !explicitTenant(r) {
		respondError(w, tenant.ErrTenantRequired)
		return
	}
	tid := tenantFrom(r.Context())

	entries := []map[string]any{}
	f, err := os.Open(a.auditPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusOK, map[string]any{"tenantId": tid, "entries": entries})
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "audit log unavailable")
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entryTenant, _ := entry["tenantId"].(string); entryTenant == tid {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "audit log unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenantId": tid, "entries": entries})
}

type toolRequest struct {
	Args map[string]any `json:"args"`
}

func (a *API) handleToolDispatch(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req toolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	result, err := a.registry.Dispatch(r.Context(), name, tenantFrom(r.Context()), req.Args)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			writeError(w, http.StatusNotFound, codeNotFound, err.Error())
			return
		}
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tool": name, "result": result})
}

func (a *API) handleToolList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": a.registry.Describe()})
}
