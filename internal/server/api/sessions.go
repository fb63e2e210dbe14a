package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/signsync/internal/session"
	"github.com/ayusman/signsync/internal/store"
)

// SessionsHandler exposes persisted transcripts and session teardown.
type SessionsHandler struct {
	sessions *session.Manager
	store    *store.Store
}

// NewSessionsHandler creates a SessionsHandler. The store is optional;
// without it transcripts are unavailable.
func NewSessionsHandler(m *session.Manager, s *store.Store) *SessionsHandler {
	return &SessionsHandler{sessions: m, store: s}
}

type transcriptResponse struct {
	Session string                  `json:"session"`
	Entries []store.TranscriptEntry `json:"entries"`
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/sessions/{id} and /api/sessions/{id}/transcript
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.destroy(w, r, parts[0])
	case len(parts) == 2 && parts[0] != "" && parts[1] == "transcript":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.transcript(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// transcript handles GET /api/sessions/{id}/transcript
func (h *SessionsHandler) transcript(w http.ResponseWriter, r *http.Request, id string) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Transcript storage is not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.store.Transcripts().List(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transcript")
		return
	}
	if entries == nil {
		entries = []store.TranscriptEntry{}
	}

	writeJSON(w, http.StatusOK, transcriptResponse{Session: id, Entries: entries})
}

// destroy handles DELETE /api/sessions/{id}. With ?purge=transcript the
// persisted transcript is deleted too, even when the session is no longer
// in memory.
func (h *SessionsHandler) destroy(w http.ResponseWriter, r *http.Request, id string) {
	purge := false
	switch v := r.URL.Query().Get("purge"); v {
	case "":
	case "transcript":
		purge = true
	default:
		writeError(w, http.StatusBadRequest, "purge must be \"transcript\"")
		return
	}
	if purge && h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Transcript storage is not configured")
		return
	}

	err := h.sessions.Destroy(id)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to destroy session")
		return
	}

	if purge {
		if err := h.store.Transcripts().DeleteBySession(id); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete transcript")
			return
		}
	} else if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
