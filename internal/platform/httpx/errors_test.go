package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/shared"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"invalid credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"},
		{"expired token", shared.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "authentication required"},
		{"forged token", shared.ErrTokenInvalid, http.StatusUnauthorized, "TOKEN_INVALID", "authentication required"},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "operation not permitted"},
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
		{"duplicate", shared.ErrDuplicateEntry, http.StatusConflict, "DUPLICATE_ENTRY", "duplicate entry"},
		{"already edited", shared.ErrAlreadyEdited, http.StatusConflict, "ALREADY_EDITED", "entry has already been edited once"},
		{"capacity", shared.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED", "lecturer has reached maximum student capacity"},
		{"invalid state", shared.ErrInvalidState, http.StatusBadRequest, "INVALID_STATE", "operation not valid in current state"},
		{"ambiguous email", shared.ErrAmbiguousCredential, http.StatusUnauthorized, "AMBIGUOUS_CREDENTIAL", "invalid credentials"},
		{"corrupt hash", shared.ErrCorruptCredential, http.StatusInternalServerError, "CORRUPT_CREDENTIAL", "internal error"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL", "internal error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/some/path", nil)

			RespondError(rec, req, tc.err)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Code)
			require.Equal(t, tc.message, body.Message)
			require.Equal(t, "/some/path", body.Path)
			require.NotEmpty(t, body.Timestamp)
		})
	}
}

func TestRespondErrorWrappedChain(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logbook", nil)

	RespondError(rec, req, fmt.Errorf("update entry: %w", shared.ErrAlreadyEdited))

	require.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ALREADY_EDITED", body.Code)
}

func TestRespondErrorValidationKeepsDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/student/login", nil)

	RespondError(rec, req, fmt.Errorf("%w: entry date cannot be in the future", shared.ErrValidation))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "VALIDATION_FAILED", body.Code)
	require.Contains(t, body.Message, "entry date cannot be in the future")
}
