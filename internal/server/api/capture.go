package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ayusman/signsync/internal/landmark"
	"github.com/ayusman/signsync/internal/store"
)

// CaptureHandler stores labelled hand samples for offline training.
type CaptureHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCaptureHandler creates a CaptureHandler with the given store.
func NewCaptureHandler(s *store.Store, logger *slog.Logger) *CaptureHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaptureHandler{store: s, logger: logger}
}

type captureRequest struct {
	Label     string          `json:"label"`
	Landmarks json.RawMessage `json:"landmarks"`
}

type captureResponse struct {
	Status      string `json:"status"`
	Label       string `json:"label"`
	SampleIndex int    `json:"sample_index"`
	Total       int    `json:"total"`
}

type sampleResponse struct {
	SampleIndex int       `json:"sample_index"`
	Data        []float64 `json:"data"`
	CreatedAt   string    `json:"created_at"`
}

type listSamplesResponse struct {
	Label   string           `json:"label"`
	Samples []sampleResponse `json:"samples"`
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/capture and /api/capture/{label}
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	label := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/capture"), "/")

	if label == "" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.create(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, label)
	case http.MethodDelete:
		h.delete(w, r, label)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// create handles POST /api/capture
func (h *CaptureHandler) create(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	label := store.NormalizeLabel(req.Label)
	if label == "" {
		writeError(w, http.StatusBadRequest, "label required")
		return
	}
	if len(req.Landmarks) == 0 {
		writeError(w, http.StatusBadRequest, "21 landmarks required")
		return
	}

	hand, err := landmark.ParseHand(req.Landmarks)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	index, total, err := h.store.Samples().Create(label, hand.Flatten())
	if err != nil {
		h.logger.Error("failed to save sample", "label", label, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save sample")
		return
	}

	h.logger.Info("sample saved", "label", label, "index", index)
	writeJSON(w, http.StatusOK, captureResponse{
		Status:      "saved",
		Label:       label,
		SampleIndex: index,
		Total:       total,
	})
}

// list handles GET /api/capture/{label}
func (h *CaptureHandler) list(w http.ResponseWriter, r *http.Request, label string) {
	samples, err := h.store.Samples().ListByLabel(label)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		Label:   store.NormalizeLabel(label),
		Samples: make([]sampleResponse, 0, len(samples)),
	}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/capture/{label}
func (h *CaptureHandler) delete(w http.ResponseWriter, r *http.Request, label string) {
	if err := h.store.Samples().DeleteByLabel(label); err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "No samples for label")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
