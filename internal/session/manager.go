package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/landmark"
	"github.com/ayusman/signsync/internal/locale"
)

// DefaultID addresses the session used when a caller names none.
const DefaultID = "default"

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Manager owns sessions keyed by id and routes frames through the engine.
type Manager struct {
	engine *gesture.Engine
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithSink persists confirmed tokens.
func WithSink(s Sink) Option {
	return func(m *Manager) {
		m.sink = s
	}
}

// WithLogger sets the logger passed to sessions.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager. A nil engine classifies with rules only.
func NewManager(engine *gesture.Engine, opts ...Option) *Manager {
	if engine == nil {
		engine = gesture.NewEngine(nil)
	}
	m := &Manager{
		engine:   engine,
		logger:   slog.Default(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engine returns the engine used for frames.
func (m *Manager) Engine() *gesture.Engine {
	return m.engine
}

// Get returns an existing session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it if needed, and
// marks it as in use so a concurrent Sweep keeps it. An empty id maps to
// DefaultID.
func (m *Manager) GetOrCreate(id string) *Session {
	if id == "" {
		id = DefaultID
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	if ok {
		s.touch()
	}
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch()
		return s
	}
	s = newSession(id, m.sink, m.logger, m.now)
	m.sessions[id] = s
	m.logger.Debug("session created", "session", id)
	return s
}

// Process classifies a frame of hands and applies it to session id.
func (m *Manager) Process(ctx context.Context, id string, hands []landmark.Hand, loc locale.Locale) Snapshot {
	frame := m.engine.ClassifyFrame(ctx, hands)
	if len(frame.Detections) > 0 {
		m.logger.Debug("frame classified", "session", id, "hands", len(hands), "best", frame.Best.Label, "confidence", frame.Best.Confidence)
	}
	return m.GetOrCreate(id).Observe(frame, loc)
}

// Reset clears a session. Resetting a session that holds no state,
// including one never seen, succeeds.
func (m *Manager) Reset(id string) {
	if id == "" {
		id = DefaultID
	}
	if s, ok := m.Get(id); ok {
		s.Reset()
	}
}

// Destroy removes a session. An empty id maps to DefaultID.
func (m *Manager) Destroy(id string) error {
	if id == "" {
		id = DefaultID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.logger.Debug("session destroyed", "session", id)
	return nil
}

// Sweep destroys sessions idle for longer than ttl and returns how many
// were removed.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("idle sessions swept", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
