// Package httpapi is the HTTP surface of the dealership backend. Routing
// uses the standard mux with method patterns; every request flows through
// the shared middleware chain before reaching a handler.
package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/auth"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/dealer"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/obs"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/stream"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tenant"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tools"
)

// Options carries everything the API needs; all fields are required except
// AllowedOrigins.
type Options struct {
	Tenants        *tenant.Service
	Auth           *auth.Service
	Dealer         *dealer.Services
	Registry       *tools.Registry
	Events         *stream.Stream
	AuditPath      string
	MaskFields     []string
	Version        string
	AllowedOrigins []string
	MaxBodyBytes   int64
	RateBurst      int
	RatePerSecond  int
}

// API is the HTTP layer.
type API struct {
	mux      *http.ServeMux
	tenants  *tenant.Service
	auth     *auth.Service
	dealer   *dealer.Services
	registry *tools.Registry
	events   *stream.Stream

	auditPath  string
	maskFields []string
	version    string
	origins    []string

	maxBody int64
	burst   int
	perSec  int
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		tenants:    opts.Tenants,
		auth:       opts.Auth,
		dealer:     opts.Dealer,
		registry:   opts.Registry,
		events:     opts.Events,
		auditPath:  opts.AuditPath,
		maskFields: opts.MaskFields,
		version:    opts.Version,
		origins:    opts.AllowedOrigins,
		maxBody:    opts.MaxBodyBytes,
		burst:      opts.RateBurst,
		perSec:     opts.RatePerSecond,
	}
	if a.maxBody <= 0 {
		a.maxBody = 1 << 20
	}
	if a.burst <= 0 {
		a.burst = 20
	}
	if a.perSec <= 0 {
		a.perSec = 10
	}

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
	a.mux.HandleFunc("GET /v1/info", a.handleInfo)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("POST /v1/auth/logout", a.handleLogout)

	registerResource(a, "inventory", a.dealer.Inventory, vehicleFilter)
	registerResource(a, "leads", a.dealer.Leads, leadFilter)
	registerResource(a, "customers", a.dealer.Customers, nil)
	registerResource(a, "reviews", a.dealer.Reviews, reviewFilter)
	registerResource(a, "campaigns", a.dealer.Campaigns, nil)
	registerResource(a, "pages", a.dealer.Pages, pageFilter)
	registerResource(a, "redirects", a.dealer.Redirects, nil)
	registerResource(a, "tickets", a.dealer.Tickets, ticketFilter)

	a.mux.HandleFunc("GET /v1/export", a.handleExport)
	a.mux.HandleFunc("GET /v1/audit", a.handleAuditRead)
	if a.events != nil {
		a.mux.HandleFunc("GET /v1/events", a.handleEvents)
	}
	a.mux.HandleFunc("GET /v1/tools", a.handleToolList)
	a.mux.HandleFunc("POST /v1/tools/{name}", a.handleToolDispatch)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no such endpoint")
	})

	return a
}

// Handler assembles the middleware chain around the mux. Order matters:
// request id and logging wrap everything, tenant resolution must precede
// auth so the static token picks up its scope.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = a.withTenant(h)
	h = CSRF(h)
	h = RateLimit(h, a.burst, a.perSec)
	h = MaxBodyBytes(h, a.maxBody)
	h = CORS(h, a.origins)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "dealer-api",
		"version": a.version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "dealer-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
		"tenant":  tenantFrom(r.Context()),
	})
}

// --- list filters ---

func vehicleFilter(q url.Values) func(dealer.Vehicle) bool {
	status := strings.TrimSpace(q.Get("status"))
	query := strings.ToLower(strings.TrimSpace(q.Get("q")))
	if status == "" && query == "" {
		return nil
	}
	return func(v dealer.Vehicle) bool {
		if status != "" && v.Status != status {
			return false
		}
		if query != "" {
			hay := strings.ToLower(strings.Join([]string{v.Name, v.Make, v.Model, v.StockNumber}, " "))
			if !strings.Contains(hay, query) {
				return false
			}
		}
		return true
	}
}

func leadFilter(q url.Values) func(dealer.Lead) bool {
	status := strings.TrimSpace(q.Get("status"))
	if status == "" {
		return nil
	}
	return func(l dealer.Lead) bool { return l.Status == status }
}

func reviewFilter(q url.Values) func(dealer.Review) bool {
	if q.Get("approved") == "" {
		return nil
	}
	want := q.Get("approved") == "true"
	return func(r dealer.Review) bool { return r.Approved == want }
}

func pageFilter(q url.Values) func(dealer.Page) bool {
	slug := strings.ToLower(strings.TrimSpace(q.Get("slug")))
	if slug == "" {
		return nil
	}
	return func(p dealer.Page) bool { return p.Slug == slug }
}

func ticketFilter(q url.Values) func(dealer.Ticket) bool {
	status := strings.TrimSpace(q.Get("status"))
	if status == "" {
		return nil
	}
	return func(t dealer.Ticket) bool { return t.Status == status }
}
