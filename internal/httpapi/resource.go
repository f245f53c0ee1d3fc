package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
)

// registerResource mounts the uniform CRUD surface for one collection under
// /v1/<path>. The optional match builder turns query parameters into a list
// filter; every resource gets the same create/read/update/delete handlers.
func registerResource[T any](a *API, path string, col *collection.Collection[T], match func(url.Values) func(T) bool) {
	base := "/v1/" + path

	a.mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var pred func(T) bool
		if match != nil {
			pred = match(q)
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		page, err := col.List(r.Context(), tenantFrom(r.Context()), pred, offset, limit)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	})

	a.mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var payload T
		if err := decodeJSON(w, r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		rec, err := col.Create(r.Context(), tenantFrom(r.Context()), actorFrom(r), payload)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	})

	a.mux.HandleFunc("GET "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec, ok, err := col.FindByID(r.Context(), tenantFrom(r.Context()), r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	a.mux.HandleFunc("PUT "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "unreadable body")
			return
		}
		if len(body) == 0 {
			writeError(w, http.StatusBadRequest, codeValidation, "request body is required")
			return
		}
		rec, err := col.Update(r.Context(), tenantFrom(r.Context()), r.PathValue("id"), actorFrom(r), func(t *T) error {
			return json.Unmarshal(body, t)
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	a.mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if _, err := col.Remove(r.Context(), tenantFrom(r.Context()), r.PathValue("id"), actorFrom(r)); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	})
}
