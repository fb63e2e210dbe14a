package session

import (
	"slices"
	"strings"
	"time"
)

// Ledger capacities.
const (
	SentenceCapacity = 10
	HistoryWindow    = 10
)

// Entry is one confirmed token with the time it was appended.
type Entry struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Ledger accumulates confirmed display tokens.
type Ledger struct {
	sentence []string
	history  []Entry
}

// Append adds text unless it equals the sentence's last token. It reports
// whether the token was appended.
func (l *Ledger) Append(text string, at time.Time) (Entry, bool) {
	if n := len(l.sentence); n > 0 && l.sentence[n-1] == text {
		return Entry{}, false
	}

	if len(l.sentence) >= SentenceCapacity {
		l.sentence = append(l.sentence[1:], text)
	} else {
		l.sentence = append(l.sentence, text)
	}

	e := Entry{Text: text, At: at}
	l.history = append(l.history, e)
	return e, true
}

// Sentence returns a copy of the current tokens, oldest first.
func (l *Ledger) Sentence() []string {
	return slices.Clone(l.sentence)
}

// SentenceText returns the tokens joined by single spaces.
func (l *Ledger) SentenceText() string {
	return strings.Join(l.sentence, " ")
}

// History returns the most recent HistoryWindow entries, oldest first.
func (l *Ledger) History() []Entry {
	start := max(0, len(l.history)-HistoryWindow)
	return slices.Clone(l.history[start:])
}

// Len returns the total number of entries ever appended since the last reset.
func (l *Ledger) Len() int {
	return len(l.history)
}

// Reset empties the sentence and history.
func (l *Ledger) Reset() {
	l.sentence = nil
	l.history = nil
}
