package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/locale"
)

// Sink receives every token appended to a session's sentence.
type Sink interface {
	Record(sessionID, text string, at time.Time) error
}

// Detection is a displayed per-hand result.
type Detection struct {
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
}

// Snapshot is the rendered state after one frame.
type Snapshot struct {
	Session    string      `json:"session"`
	Detections []Detection `json:"detections"`
	Gesture    string      `json:"gesture"`
	Confidence float64     `json:"confidence"`
	Sentence   string      `json:"sentence"`
	History    []Entry     `json:"history"`
	// Confirmed is set when this frame appended a token.
	Confirmed string `json:"confirmed,omitempty"`
}

// Session is one conversation's recognition state. All methods are safe
// for concurrent use; frames for the same session are serialized.
type Session struct {
	id     string
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	confirmer Confirmer
	ledger    Ledger
	lastSeen  time.Time
}

func newSession(id string, sink Sink, logger *slog.Logger, now func() time.Time) *Session {
	return &Session{
		id:       id,
		sink:     sink,
		logger:   logger,
		now:      now,
		lastSeen: now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Observe runs one classified frame through confirmation and the ledger.
func (s *Session) Observe(frame gesture.Frame, loc locale.Locale) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.lastSeen = now

	var confirmed string
	if label, ok := s.confirmer.Observe(frame.Best); ok {
		text := loc.Display(label)
		if e, appended := s.ledger.Append(text, now); appended {
			confirmed = e.Text
			s.logger.Info("sign confirmed", "session", s.id, "gesture", label, "text", e.Text)
			if s.sink != nil {
				if err := s.sink.Record(s.id, e.Text, e.At); err != nil {
					s.logger.Error("failed to record transcript", "session", s.id, "error", err)
				}
			}
		}
	}

	snap := s.snapshotLocked(loc)
	snap.Detections = make([]Detection, 0, len(frame.Detections))
	for _, d := range frame.Detections {
		snap.Detections = append(snap.Detections, Detection{
			Gesture:    loc.Display(d.Label),
			Confidence: d.Confidence,
		})
	}
	snap.Gesture = loc.Display(frame.Best.Label)
	snap.Confidence = frame.Best.Confidence
	snap.Confirmed = confirmed
	return snap
}

// Snapshot returns the current sentence and history without a frame.
func (s *Session) Snapshot(loc locale.Locale) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(loc)
}

// Reset clears the sentence, history and hold state together.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.confirmer.Reset()
	s.ledger.Reset()
	s.lastSeen = s.now()
}

// Candidate returns the label being held and its consecutive count.
func (s *Session) Candidate() (gesture.Label, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmer.State()
}

// Sentence returns the current tokens, oldest first.
func (s *Session) Sentence() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Sentence()
}

// touch marks the session as in use.
func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
}

// LastSeen returns when the session last received a frame or reset.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) snapshotLocked(loc locale.Locale) Snapshot {
	history := s.ledger.History()
	if history == nil {
		history = []Entry{}
	}
	return Snapshot{
		Session:    s.id,
		Detections: []Detection{},
		Gesture:    loc.Display(gesture.NoHand),
		Sentence:   s.ledger.SentenceText(),
		History:    history,
	}
}
