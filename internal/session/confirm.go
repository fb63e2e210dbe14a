// Package session tracks per-conversation recognition state: the hold
// counter that confirms a sign and the sentence built from confirmed signs.
package session

import "github.com/ayusman/signsync/internal/gesture"

// Confirmation tuning.
const (
	// ConfidenceGate is the confidence a frame must exceed to count.
	ConfidenceGate = 0.75
	// HoldFrames is the number of consecutive qualifying frames of one
	// label needed to confirm it. The first qualifying frame counts as 1.
	HoldFrames = 4
)

// Confirmer debounces frame results into confirmed labels.
//
// Frames that are Unknown, No Hand or at or below ConfidenceGate leave the
// state untouched; they neither advance nor reset the hold. Once the count
// reaches HoldFrames every further matching frame confirms again, and the
// ledger's adjacent-duplicate check absorbs the repeats.
type Confirmer struct {
	candidate gesture.Label
	count     int
}

// Observe feeds one frame-best result. It returns the label and true when
// the frame confirms a sign.
func (c *Confirmer) Observe(r gesture.Result) (gesture.Label, bool) {
	if !qualifies(r) {
		return "", false
	}

	if r.Label == c.candidate {
		c.count++
	} else {
		c.candidate = r.Label
		c.count = 1
	}

	if c.count >= HoldFrames {
		return c.candidate, true
	}
	return "", false
}

// State returns the current candidate and its consecutive count.
func (c *Confirmer) State() (gesture.Label, int) {
	return c.candidate, c.count
}

// Reset clears the candidate and count.
func (c *Confirmer) Reset() {
	c.candidate = ""
	c.count = 0
}

func qualifies(r gesture.Result) bool {
	if r.Label == gesture.Unknown || r.Label == gesture.NoHand || r.Label == "" {
		return false
	}
	return r.Confidence > ConfidenceGate
}
