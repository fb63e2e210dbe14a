package gesture

import (
	"context"

	"github.com/ayusman/signsync/internal/landmark"
)

// NoHandResult is the frame result when no hands were observed.
var NoHandResult = Result{Label: NoHand, Confidence: 0}

// Frame is the classification of every hand seen in one frame.
type Frame struct {
	// Detections holds one result per input hand, in input order.
	Detections []Result
	// Best is the result that drives confirmation.
	Best Result
}

// Aggregate reduces per-hand results to the highest-confidence one.
// Ties keep the first hand; an empty frame yields NoHandResult.
func Aggregate(results []Result) Result {
	if len(results) == 0 {
		return NoHandResult
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	return best
}

// Engine classifies whole frames.
type Engine struct {
	arbiter *Arbiter
}

// NewEngine creates an Engine. A nil arbiter uses rules only.
func NewEngine(a *Arbiter) *Engine {
	if a == nil {
		a = NewArbiter()
	}
	return &Engine{arbiter: a}
}

// Name describes the active classification path.
func (e *Engine) Name() string {
	if e.arbiter.HasScorer() {
		return "rule+model"
	}
	return "rule"
}

// ClassifyHand classifies a single hand.
func (e *Engine) ClassifyHand(ctx context.Context, h *landmark.Hand) Result {
	return e.arbiter.Classify(ctx, h)
}

// ClassifyFrame classifies every hand and picks the frame's best result.
func (e *Engine) ClassifyFrame(ctx context.Context, hands []landmark.Hand) Frame {
	detections := make([]Result, 0, len(hands))
	for i := range hands {
		detections = append(detections, e.arbiter.Classify(ctx, &hands[i]))
	}
	return Frame{
		Detections: detections,
		Best:       Aggregate(detections),
	}
}
