package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/landmark-lsms/lsms-backend/internal/domain/record"
	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
)

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError writes the canonical failure body.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondDomainError maps a domain error onto the HTTP taxonomy:
// validation 400, not-found 404, conflict 409, auth/expiry 401,
// everything else 500.
func respondDomainError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), publicMessage(err))
}

func statusFor(err error) int {
	switch {
	case shared.IsValidation(err):
		return http.StatusBadRequest
	case shared.IsNotFound(err):
		return http.StatusNotFound
	case shared.IsConflict(err):
		return http.StatusConflict
	case shared.IsAuth(err), errors.Is(err, shared.ErrExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the caller-facing message of a domain error.
// Unexpected errors are masked.
func publicMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	var re *record.RangeError
	if errors.As(err, &re) {
		return re.Error()
	}
	return "Server error. Please try again later."
}
