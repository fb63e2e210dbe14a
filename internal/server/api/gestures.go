package api

import (
	"net/http"
	"sort"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/store"
)

// GestureHandler lists the recognizable vocabulary.
type GestureHandler struct {
	store *store.Store
}

// NewGestureHandler creates a GestureHandler. The store is optional and only
// consulted for ?include=captured.
func NewGestureHandler(s *store.Store) *GestureHandler {
	return &GestureHandler{store: s}
}

type listGesturesResponse struct {
	Gestures []string `json:"gestures"`
}

// ServeHTTP handles GET /api/gestures.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vocab := gesture.Vocabulary()
	names := make([]string, 0, len(vocab))
	for _, l := range vocab {
		names = append(names, string(l))
	}

	if r.URL.Query().Get("include") != "captured" {
		writeJSON(w, http.StatusOK, listGesturesResponse{Gestures: names})
		return
	}

	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Sample storage is not configured")
		return
	}

	captured, err := h.store.Samples().Labels()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list captured labels")
		return
	}

	seen := make(map[string]bool, len(names)+len(captured))
	merged := make([]string, 0, len(names)+len(captured))
	for _, n := range append(names, captured...) {
		if !seen[n] {
			seen[n] = true
			merged = append(merged, n)
		}
	}
	sort.Strings(merged)

	writeJSON(w, http.StatusOK, listGesturesResponse{Gestures: merged})
}
