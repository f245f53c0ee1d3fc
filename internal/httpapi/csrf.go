package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

const (
	csrfCookie = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

// CSRF implements the cookie/header echo pattern for browser clients: safe
// methods issue the cookie, mutating requests carrying it must echo the
// value in X-CSRF-Token. Bearer-token requests skip the check because a
// cross-site attacker cannot attach an Authorization header.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if _, err := r.Cookie(csrfCookie); err != nil {
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookie,
					Value:    uuid.NewString(),
					Path:     "/",
					SameSite: http.SameSiteStrictMode,
				})
			}
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Authorization") != "" {
			next.ServeHTTP(w, r)
			return
		}

		// No cookie means no ambient credential to ride on; API clients
		// that never fetched the cookie pass through.
		cookie, err := r.Cookie(csrfCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get(csrfHeader)
		if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			writeError(w, http.StatusForbidden, codeForbidden, "CSRF token mismatch")
			return
		}
		next.ServeHTTP(w, r)
	})
}
