package httpx

import (
	"errors"
	"net/http"

	"github.com/practicheck/practicheck/internal/shared"
)

// RespondError maps domain errors to the HTTP error envelope. Token errors
// keep distinct internal codes but share one public message so expiry and
// forgery are indistinguishable to clients.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	case errors.Is(err, shared.ErrTokenExpired):
		Error(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "authentication required")
	case errors.Is(err, shared.ErrTokenInvalid):
		Error(w, r, http.StatusUnauthorized, "TOKEN_INVALID", "authentication required")
	case errors.Is(err, shared.ErrUnauthorized):
		Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, shared.ErrForbidden):
		Error(w, r, http.StatusForbidden, "FORBIDDEN", "operation not permitted")
	case errors.Is(err, shared.ErrNotFound):
		Error(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, shared.ErrDuplicateEntry):
		Error(w, r, http.StatusConflict, "DUPLICATE_ENTRY", "duplicate entry")
	case errors.Is(err, shared.ErrAlreadyEdited):
		Error(w, r, http.StatusConflict, "ALREADY_EDITED", "entry has already been edited once")
	case errors.Is(err, shared.ErrCapacityExceeded):
		Error(w, r, http.StatusConflict, "CAPACITY_EXCEEDED", "lecturer has reached maximum student capacity")
	case errors.Is(err, shared.ErrInvalidState):
		Error(w, r, http.StatusBadRequest, "INVALID_STATE", "operation not valid in current state")
	case errors.Is(err, shared.ErrAmbiguousCredential):
		Error(w, r, http.StatusUnauthorized, "AMBIGUOUS_CREDENTIAL", "invalid credentials")
	case errors.Is(err, shared.ErrCorruptCredential):
		Error(w, r, http.StatusInternalServerError, "CORRUPT_CREDENTIAL", "internal error")
	case errors.Is(err, shared.ErrValidation):
		Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	default:
		Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
