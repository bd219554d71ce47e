// Package response provides helpers for writing JSON HTTP responses.
//
// Most of the application answers with rendered pages. The exception is
// deleting a student, which browsers trigger asynchronously: its failures
// come back as a small JSON payload the page script can read.
package response

import (
	"encoding/json"
	"net/http"
)

// Response is the error envelope:
//
//	{ "error": "Student not found" }
type Response struct {
	Error string `json:"error"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body writes. Once WriteHeader
// is called headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error wraps a client-facing message in the standard envelope.
func Error(message string) Response {
	return Response{Error: message}
}
