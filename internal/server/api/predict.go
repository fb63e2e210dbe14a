package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ayusman/signsync/internal/landmark"
	"github.com/ayusman/signsync/internal/locale"
	"github.com/ayusman/signsync/internal/session"
)

// ErrInvalidJSON is returned for a body that is not a JSON object.
var ErrInvalidJSON = errors.New("invalid JSON")

// PredictRequest is one frame of hands from a client.
type PredictRequest struct {
	MultiLandmarks []json.RawMessage `json:"multi_landmarks"`
	// Landmarks is a single hand accepted when MultiLandmarks is empty.
	Landmarks json.RawMessage `json:"landmarks"`
	Lang      string          `json:"lang"`
}

// Hands parses the request's hands. A request with no hands yields an
// empty slice.
func (req *PredictRequest) Hands() ([]landmark.Hand, error) {
	raws := req.MultiLandmarks
	if len(raws) == 0 && len(req.Landmarks) > 0 && string(req.Landmarks) != "null" {
		raws = []json.RawMessage{req.Landmarks}
	}
	return landmark.ParseHands(raws)
}

// HistoryItem is a ledger entry with a humanized time marker.
type HistoryItem struct {
	Text string    `json:"text"`
	Time string    `json:"time"`
	At   time.Time `json:"at"`
}

// PredictResponse is the rendered session state after a frame.
type PredictResponse struct {
	Session    string              `json:"session"`
	Detections []session.Detection `json:"detections"`
	Gesture    string              `json:"gesture"`
	Confidence float64             `json:"confidence"`
	Sentence   string              `json:"sentence"`
	History    []HistoryItem       `json:"history"`
	Confirmed  string              `json:"confirmed,omitempty"`
}

// NewPredictResponse renders a snapshot for the wire.
func NewPredictResponse(snap session.Snapshot) PredictResponse {
	history := make([]HistoryItem, 0, len(snap.History))
	for _, e := range snap.History {
		history = append(history, HistoryItem{
			Text: e.Text,
			Time: humanize.Time(e.At),
			At:   e.At,
		})
	}
	return PredictResponse{
		Session:    snap.Session,
		Detections: snap.Detections,
		Gesture:    snap.Gesture,
		Confidence: snap.Confidence,
		Sentence:   snap.Sentence,
		History:    history,
		Confirmed:  snap.Confirmed,
	}
}

// PredictHandler classifies frames posted to /api/predict.
type PredictHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewPredictHandler creates a PredictHandler backed by the given sessions.
func NewPredictHandler(m *session.Manager, logger *slog.Logger) *PredictHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictHandler{sessions: m, logger: logger}
}

// ServeHTTP implements the http.Handler interface.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	resp, err := h.Predict(r.Context(), SessionID(r), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Predict decodes a PredictRequest body and applies it to session id.
// The returned error is either ErrInvalidJSON or wraps a
// *landmark.InputShapeError and is safe to show to clients.
func (h *PredictHandler) Predict(ctx context.Context, id string, body []byte) (PredictResponse, error) {
	var req PredictRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return PredictResponse{}, ErrInvalidJSON
		}
	}

	hands, err := req.Hands()
	if err != nil {
		h.logger.Debug("rejected frame", "session", id, "error", err)
		return PredictResponse{}, err
	}

	snap := h.sessions.Process(ctx, id, hands, locale.Parse(req.Lang))
	return NewPredictResponse(snap), nil
}
