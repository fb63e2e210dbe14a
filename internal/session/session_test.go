package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/landmark"
	"github.com/ayusman/signsync/internal/locale"
)

var (
	hello    = gesture.Result{Label: gesture.Hello, Confidence: 0.95}
	yes      = gesture.Result{Label: gesture.Yes, Confidence: 0.92}
	weakHelp = gesture.Result{Label: gesture.Help, Confidence: 0.75}
)

func frameOf(r gesture.Result) gesture.Frame {
	return gesture.Frame{Detections: []gesture.Result{r}, Best: r}
}

func noHandFrame() gesture.Frame {
	return gesture.Frame{Best: gesture.NoHandResult}
}

// fakeClock advances one second per call.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingSink struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (s *recordingSink) Record(sessionID, text string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, sessionID+":"+text)
	return s.err
}

func newTestManager(opts ...Option) (*Manager, *fakeClock) {
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now), WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return NewManager(nil, opts...), clock
}

func TestConfirmer_HoldFrames(t *testing.T) {
	var c Confirmer

	for i := 1; i < HoldFrames; i++ {
		if _, ok := c.Observe(hello); ok {
			t.Fatalf("confirmed after %d frames, want %d", i, HoldFrames)
		}
	}
	label, ok := c.Observe(hello)
	if !ok || label != gesture.Hello {
		t.Fatalf("expected HELLO confirmed on frame %d, got %q %v", HoldFrames, label, ok)
	}

	// The latch keeps firing while the same label holds.
	if _, ok := c.Observe(hello); !ok {
		t.Error("expected re-confirmation after the threshold")
	}
}

func TestConfirmer_IgnoresNonQualifyingFrames(t *testing.T) {
	var c Confirmer
	c.Observe(hello)
	c.Observe(hello)

	ignored := []gesture.Result{
		gesture.UnknownResult,
		gesture.NoHandResult,
		weakHelp,
		{Label: gesture.Stop, Confidence: 0.5},
	}
	for _, r := range ignored {
		if _, ok := c.Observe(r); ok {
			t.Errorf("Observe(%+v) confirmed", r)
		}
		if label, count := c.State(); label != gesture.Hello || count != 2 {
			t.Errorf("after %+v: state = %s/%d, want HELLO/2", r, label, count)
		}
	}

	c.Observe(hello)
	if _, ok := c.Observe(hello); !ok {
		t.Error("noise frames should not restart the hold")
	}
}

func TestConfirmer_CandidateChangeRestarts(t *testing.T) {
	var c Confirmer
	c.Observe(hello)
	c.Observe(hello)
	c.Observe(hello)
	c.Observe(yes)

	if label, count := c.State(); label != gesture.Yes || count != 1 {
		t.Errorf("state = %s/%d, want YES/1", label, count)
	}

	c.Reset()
	if label, count := c.State(); label != "" || count != 0 {
		t.Errorf("after reset state = %s/%d", label, count)
	}
}

func TestLedger_AdjacentDedup(t *testing.T) {
	var l Ledger
	now := time.Now()

	if _, ok := l.Append("HELLO", now); !ok {
		t.Fatal("first append rejected")
	}
	if _, ok := l.Append("HELLO", now); ok {
		t.Error("adjacent duplicate appended")
	}
	l.Append("YES", now)
	if _, ok := l.Append("HELLO", now); !ok {
		t.Error("non-adjacent repeat rejected")
	}

	if got := l.SentenceText(); got != "HELLO YES HELLO" {
		t.Errorf("SentenceText() = %q", got)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
}

func TestLedger_Bounded(t *testing.T) {
	var l Ledger
	base := time.Now()

	const n = 25
	for i := 0; i < n; i++ {
		l.Append(fmt.Sprintf("T%d", i), base.Add(time.Duration(i)*time.Second))
	}

	sentence := l.Sentence()
	if len(sentence) != SentenceCapacity {
		t.Fatalf("sentence length = %d, want %d", len(sentence), SentenceCapacity)
	}
	for i, tok := range sentence {
		if want := fmt.Sprintf("T%d", n-SentenceCapacity+i); tok != want {
			t.Errorf("sentence[%d] = %s, want %s", i, tok, want)
		}
	}

	history := l.History()
	if len(history) != HistoryWindow {
		t.Fatalf("history length = %d, want %d", len(history), HistoryWindow)
	}
	if history[0].Text != "T15" || history[HistoryWindow-1].Text != "T24" {
		t.Errorf("history window = %s..%s, want T15..T24", history[0].Text, history[HistoryWindow-1].Text)
	}
	if l.Len() != n {
		t.Errorf("Len() = %d, want %d retained internally", l.Len(), n)
	}
}

func TestSession_LatchProducesSingleToken(t *testing.T) {
	m, _ := newTestManager()
	s := m.GetOrCreate("a")

	s.Observe(noHandFrame(), locale.English)
	s.Observe(frameOf(weakHelp), locale.English)

	var confirmed []string
	for i := 0; i < HoldFrames; i++ {
		if snap := s.Observe(frameOf(hello), locale.English); snap.Confirmed != "" {
			confirmed = append(confirmed, snap.Confirmed)
		}
	}
	s.Observe(noHandFrame(), locale.English)
	s.Observe(frameOf(gesture.UnknownResult), locale.English)

	if len(confirmed) != 1 || confirmed[0] != "HELLO" {
		t.Fatalf("confirmed = %v, want [HELLO]", confirmed)
	}
	if got := s.Sentence(); len(got) != 1 {
		t.Errorf("sentence = %v, want one token", got)
	}
}

func TestSession_LongHoldIsAbsorbed(t *testing.T) {
	m, _ := newTestManager()
	s := m.GetOrCreate("a")

	for i := 0; i < 20; i++ {
		s.Observe(frameOf(hello), locale.English)
	}

	snap := s.Snapshot(locale.English)
	if snap.Sentence != "HELLO" || len(snap.History) != 1 {
		t.Errorf("snapshot = %+v, want a single HELLO", snap)
	}
}

func TestSession_NoHandDoesNotMutate(t *testing.T) {
	m, _ := newTestManager()
	s := m.GetOrCreate("a")
	s.Observe(frameOf(yes), locale.English)
	s.Observe(frameOf(yes), locale.English)

	snap := s.Observe(noHandFrame(), locale.English)
	if snap.Gesture != "No Hand" || snap.Confidence != 0 {
		t.Errorf("snapshot gesture = %q/%f, want No Hand/0", snap.Gesture, snap.Confidence)
	}
	if len(snap.Detections) != 0 {
		t.Errorf("expected no detections, got %v", snap.Detections)
	}
	if label, count := s.Candidate(); label != gesture.Yes || count != 2 {
		t.Errorf("candidate = %s/%d, want YES/2", label, count)
	}
}

func TestSession_DisplaysLocale(t *testing.T) {
	m, _ := newTestManager()
	s := m.GetOrCreate("a")

	var snap Snapshot
	for i := 0; i < HoldFrames; i++ {
		snap = s.Observe(frameOf(hello), locale.Tamil)
	}

	if snap.Gesture != "வணக்கம்" || snap.Detections[0].Gesture != "வணக்கம்" {
		t.Errorf("gesture not localized: %+v", snap)
	}
	if snap.Sentence != "வணக்கம்" {
		t.Errorf("Sentence = %q", snap.Sentence)
	}

	// Same label shown in another locale is a different token.
	s.Observe(frameOf(hello), locale.English)
	if got := s.Sentence(); len(got) != 2 || got[1] != "HELLO" {
		t.Errorf("sentence = %v", got)
	}
}

func TestSession_ResetIdempotent(t *testing.T) {
	m, _ := newTestManager()
	s := m.GetOrCreate("a")
	for i := 0; i < HoldFrames; i++ {
		s.Observe(frameOf(hello), locale.English)
	}

	s.Reset()
	first := s.Snapshot(locale.English)
	s.Reset()
	second := s.Snapshot(locale.English)

	if first.Sentence != "" || len(first.History) != 0 {
		t.Errorf("after reset: %+v", first)
	}
	if first.Sentence != second.Sentence || len(first.History) != len(second.History) {
		t.Error("second reset changed state")
	}
	if label, count := s.Candidate(); label != "" || count != 0 {
		t.Errorf("candidate after reset = %s/%d", label, count)
	}
}

func TestSession_SinkRecordsTokens(t *testing.T) {
	sink := &recordingSink{}
	m, _ := newTestManager(WithSink(sink))
	s := m.GetOrCreate("room")

	for i := 0; i < HoldFrames+2; i++ {
		s.Observe(frameOf(hello), locale.English)
	}
	for i := 0; i < HoldFrames; i++ {
		s.Observe(frameOf(yes), locale.English)
	}

	want := []string{"room:HELLO", "room:YES"}
	if fmt.Sprint(sink.entries) != fmt.Sprint(want) {
		t.Errorf("sink entries = %v, want %v", sink.entries, want)
	}
}

func TestSession_SinkErrorIsNotFatal(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	m, _ := newTestManager(WithSink(sink))
	s := m.GetOrCreate("room")

	var snap Snapshot
	for i := 0; i < HoldFrames; i++ {
		snap = s.Observe(frameOf(hello), locale.English)
	}
	if snap.Sentence != "HELLO" {
		t.Errorf("Sentence = %q, want HELLO despite sink error", snap.Sentence)
	}
}

func TestManager_ProcessLandmarks(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	hands := []landmark.Hand{landmark.Pose(true, false, false, false, false)}

	var snap Snapshot
	for i := 0; i < HoldFrames; i++ {
		snap = m.Process(ctx, "", hands, locale.English)
	}

	if snap.Session != DefaultID {
		t.Errorf("Session = %q, want %q", snap.Session, DefaultID)
	}
	if snap.Gesture != "ONE" || snap.Confidence != 0.91 {
		t.Errorf("gesture = %s/%f, want ONE/0.91", snap.Gesture, snap.Confidence)
	}
	if snap.Sentence != "ONE" {
		t.Errorf("Sentence = %q, want ONE", snap.Sentence)
	}

	empty := m.Process(ctx, "", nil, locale.English)
	if empty.Gesture != "No Hand" || empty.Sentence != "ONE" {
		t.Errorf("empty frame snapshot = %+v", empty)
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m, _ := newTestManager()
	a := m.GetOrCreate("a")
	b := m.GetOrCreate("b")

	for i := 0; i < HoldFrames; i++ {
		a.Observe(frameOf(hello), locale.English)
	}
	b.Observe(frameOf(hello), locale.English)

	if a.Snapshot(locale.English).Sentence != "HELLO" {
		t.Error("session a should have HELLO")
	}
	if b.Snapshot(locale.English).Sentence != "" {
		t.Error("session b should be empty")
	}
	if _, count := b.Candidate(); count != 1 {
		t.Errorf("session b count = %d, want 1", count)
	}
}

func TestManager_ResetAndDestroy(t *testing.T) {
	m, _ := newTestManager()

	m.Reset("never-seen")
	if m.Len() != 0 {
		t.Errorf("Reset created a session")
	}

	s := m.GetOrCreate("x")
	for i := 0; i < HoldFrames; i++ {
		s.Observe(frameOf(yes), locale.English)
	}
	m.Reset("x")
	if s.Snapshot(locale.English).Sentence != "" {
		t.Error("Reset did not clear the session")
	}

	if err := m.Destroy("x"); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if err := m.Destroy("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Destroy() error = %v, want ErrNotFound", err)
	}
	if _, ok := m.Get("x"); ok {
		t.Error("session still present after Destroy")
	}
}

func TestManager_Sweep(t *testing.T) {
	m, clock := newTestManager()
	m.GetOrCreate("old")
	clock.Advance(time.Hour)
	m.GetOrCreate("fresh")

	if removed := m.Sweep(30 * time.Minute); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, ok := m.Get("old"); ok {
		t.Error("idle session survived the sweep")
	}
	if _, ok := m.Get("fresh"); !ok {
		t.Error("fresh session was swept")
	}
}

func TestManager_SweepKeepsSessionInUse(t *testing.T) {
	m, clock := newTestManager()
	m.GetOrCreate("held")
	clock.Advance(time.Hour)

	// A frame that has just looked its session up must not land on an
	// evicted session.
	s := m.GetOrCreate("held")
	if removed := m.Sweep(30 * time.Minute); removed != 0 {
		t.Fatalf("Sweep() removed %d, want 0", removed)
	}

	got, ok := m.Get("held")
	if !ok || got != s {
		t.Fatal("session in use was swept or replaced")
	}
}

func TestManager_EmptyIDUsesDefault(t *testing.T) {
	m, _ := newTestManager()
	m.Process(context.Background(), "", []landmark.Hand{landmark.OpenPalm()}, locale.English)

	if _, ok := m.Get(DefaultID); !ok {
		t.Fatal("empty id should create the default session")
	}
	m.Reset("")
	if err := m.Destroy(""); err != nil {
		t.Fatalf("Destroy(\"\") error = %v", err)
	}
	if _, ok := m.Get(DefaultID); ok {
		t.Error("default session survived Destroy(\"\")")
	}
	if err := m.Destroy(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Destroy(\"\") error = %v, want ErrNotFound", err)
	}
}

func TestManager_ConcurrentFrames(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	hands := []landmark.Hand{landmark.OpenPalm()}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.Process(ctx, "shared", hands, locale.English)
			}
		}()
	}
	wg.Wait()

	s, _ := m.Get("shared")
	if label, count := s.Candidate(); label != gesture.Hello || count != 400 {
		t.Errorf("candidate = %s/%d, want HELLO/400", label, count)
	}
	if got := s.Sentence(); len(got) != 1 || got[0] != "HELLO" {
		t.Errorf("sentence = %v, want [HELLO]", got)
	}
}
