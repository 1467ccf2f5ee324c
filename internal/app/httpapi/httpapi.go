// Package httpapi holds the JSON plumbing shared by the HTTP services:
// response encoding, problem-style errors and the session header contract.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"knowledge-cafe/internal/domain"
)

// SessionHeader identifies the cart a request operates on. The frontend
// generates the value once per browser session.
const SessionHeader = "X-Session-ID"

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem emits a simplified RFC 7807 problem body.
func WriteProblem(w http.ResponseWriter, code int, typ, detail string) {
	WriteJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

// Error maps the domain error taxonomy onto HTTP problems. Validation is the
// caller's fault, not-found is a normal outcome, store failures are a
// degraded backend.
func Error(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		WriteProblem(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteProblem(w, http.StatusNotFound, "not_found", "no such record")
	case domain.IsStoreError(err):
		WriteProblem(w, http.StatusServiceUnavailable, "store_error", err.Error())
	default:
		WriteProblem(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("body", "malformed JSON body")
	}
	return nil
}

func SessionID(r *http.Request) (string, error) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		return "", domain.Invalid("session", SessionHeader+" header is required")
	}
	return id, nil
}
