// Package api provides HTTP API handlers for the signsync recognition service.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/signsync/internal/session"
)

// SessionHeader names the request header that selects a session.
const SessionHeader = "X-Session-ID"

// maxBodyBytes bounds request bodies. A two-hand frame is well under 8KB.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// SessionID returns the session a request addresses: the X-Session-ID
// header, then the session query parameter, then the default session.
func SessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get("session")); id != "" {
		return id
	}
	return session.DefaultID
}
