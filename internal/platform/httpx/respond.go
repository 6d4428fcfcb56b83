// Package httpx provides JSON response utilities and the single error
// envelope returned by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorBody is the envelope for every error response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends the standard error envelope.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	path := ""
	if r != nil && r.URL != nil {
		path = r.URL.Path
	}
	JSON(w, status, ErrorBody{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      path,
	})
}

// DecodeJSON decodes the request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
