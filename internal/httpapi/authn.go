package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/v1/info",
	"/v1/auth/login",
	"/v1/auth/refresh",
	"/v1/auth/logout",
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// withAuth verifies the bearer token on protected paths and stores its
// claims in the context. The static integration token authenticates as an
// admin scoped to the request's tenant.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeAuthRequired, err.Error())
			return
		}

		if a.auth.VerifyStatic(token) {
			claims := &auth.Claims{Role: auth.RoleAdmin, TenantID: tenantFrom(r.Context())}
			claims.Subject = "static-token"
			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
			return
		}

		claims, err := a.auth.VerifyAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, codeTokenExpired, "token expired")
			default:
				writeError(w, http.StatusUnauthorized, codeInvalidToken, "invalid token")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	})
}

// requireAdmin guards the administrative endpoints.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !auth.HasRole(r.Context(), auth.RoleAdmin) {
		writeError(w, http.StatusForbidden, codeForbidden, "admin role required")
		return false
	}
	return true
}

// actorFrom names the authenticated caller for audit records.
func actorFrom(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
