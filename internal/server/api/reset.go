package api

import (
	"net/http"

	"github.com/ayusman/signsync/internal/session"
)

// ResetHandler clears a session's sentence, history and hold state.
type ResetHandler struct {
	sessions *session.Manager
}

// NewResetHandler creates a ResetHandler.
func NewResetHandler(m *session.Manager) *ResetHandler {
	return &ResetHandler{sessions: m}
}

// ServeHTTP handles POST /api/reset.
func (h *ResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := SessionID(r)
	h.sessions.Reset(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "session": id})
}
