package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/auth"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tenant"
)

// Machine-readable error codes of the envelope. Clients branch on the code,
// never on the message text.
const (
	codeValidation     = "VALIDATION_ERROR"
	codeNotFound       = "NOT_FOUND"
	codeConflict       = "CONFLICT"
	codeTenantRequired = "TENANT_REQUIRED"
	codeAuthRequired   = "AUTH_REQUIRED"
	codeForbidden      = "FORBIDDEN"
	codeInvalidToken   = "INVALID_TOKEN"
	codeTokenExpired   = "TOKEN_EXPIRED"
	codeRateLimited    = "RATE_LIMITED"
	codeInternal       = "INTERNAL"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": errorBody{Code: code, Message: msg}})
}

func writeErrorDetails(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSON(w, status, map[string]any{"error": errorBody{Code: code, Message: msg, Details: details}})
}

// respondError maps domain errors onto the HTTP envelope. Unknown errors
// become opaque 500s so internals never leak into responses.
func respondError(w http.ResponseWriter, err error) {
	var verr *collection.ValidationError
	var conflict *collection.ConflictError
	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) > 0 {
			writeErrorDetails(w, http.StatusBadRequest, codeValidation, verr.Message, map[string]any{"fields": verr.Fields})
			return
		}
		writeError(w, http.StatusBadRequest, codeValidation, verr.Message)
	case errors.As(err, &conflict):
		writeErrorDetails(w, http.StatusConflict, codeConflict, conflict.Error(), map[string]any{"field": conflict.Field})
	case errors.Is(err, collection.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, tenant.ErrTenantRequired):
		writeError(w, http.StatusBadRequest, codeTenantRequired, "tenant is required for this endpoint")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeAuthRequired, "invalid credentials")
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, codeTokenExpired, "token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, codeInvalidToken, "invalid token")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
