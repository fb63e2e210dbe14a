package gesture

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/ayusman/signsync/internal/landmark"
)

// Fallback defaults.
const (
	DefaultFallbackThreshold = 0.78
	DefaultFallbackTimeout   = 50 * time.Millisecond
)

// Scorer is a secondary statistical classifier. Score receives the
// flattened 63-value hand and returns one score per vocabulary index.
type Scorer interface {
	Score(ctx context.Context, input []float64) ([]float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, input []float64) ([]float64, error)

// Score calls f(ctx, input).
func (f ScorerFunc) Score(ctx context.Context, input []float64) ([]float64, error) {
	return f(ctx, input)
}

// ReservedLabels are owned by the rule engine; a secondary model is never
// consulted when the rules produce one of them.
var ReservedLabels = []Label{One, Wait, Good, Sorry, Please, Little, Perfect, Water, Stop, ThankYou}

// Arbiter merges rule results with an optional secondary classifier.
//
// Precedence: reserved rule label, then a confident secondary label, then a
// non-reserved rule label, then Unknown.
type Arbiter struct {
	rules     *RuleClassifier
	scorer    Scorer
	reserved  map[Label]struct{}
	threshold float64
	timeout   time.Duration
	logger    *slog.Logger
}

// ArbiterOption configures an Arbiter.
type ArbiterOption func(*Arbiter)

// WithScorer sets the secondary classifier. A nil scorer disables fallback.
func WithScorer(s Scorer) ArbiterOption {
	return func(a *Arbiter) {
		a.scorer = s
	}
}

// WithThreshold sets the confidence a secondary label must exceed.
func WithThreshold(t float64) ArbiterOption {
	return func(a *Arbiter) {
		if t > 0 && t <= 1 {
			a.threshold = t
		}
	}
}

// WithTimeout bounds a single secondary classifier call.
func WithTimeout(d time.Duration) ArbiterOption {
	return func(a *Arbiter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger used for fallback failures.
func WithLogger(l *slog.Logger) ArbiterOption {
	return func(a *Arbiter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewArbiter creates an Arbiter over the default rule cascade.
func NewArbiter(opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{
		rules:     NewRuleClassifier(),
		reserved:  make(map[Label]struct{}, len(ReservedLabels)),
		threshold: DefaultFallbackThreshold,
		timeout:   DefaultFallbackTimeout,
		logger:    slog.Default(),
	}
	for _, l := range ReservedLabels {
		a.reserved[l] = struct{}{}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HasScorer reports whether a secondary classifier is configured.
func (a *Arbiter) HasScorer() bool {
	return a.scorer != nil
}

// Reserved reports whether l bypasses the secondary classifier.
func (a *Arbiter) Reserved(l Label) bool {
	_, ok := a.reserved[l]
	return ok
}

// Classify returns the arbitrated result for one hand.
func (a *Arbiter) Classify(ctx context.Context, h *landmark.Hand) Result {
	rule := a.rules.Classify(ExtractFeatures(h))
	if a.Reserved(rule.Label) {
		return rule
	}

	if a.scorer != nil {
		if r, ok := a.fallback(ctx, h.Flatten()); ok {
			return r
		}
	}

	if rule.Label != Unknown {
		return rule
	}
	return UnknownResult
}

type scoreResult struct {
	scores []float64
	err    error
}

// fallback runs the scorer under the arbiter timeout. A slow, failing or
// under-confident scorer yields ok == false.
func (a *Arbiter) fallback(ctx context.Context, input []float64) (Result, bool) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan scoreResult, 1)
	go func() {
		scores, err := a.scorer.Score(ctx, input)
		done <- scoreResult{scores: scores, err: err}
	}()

	var res scoreResult
	select {
	case res = <-done:
	case <-ctx.Done():
		a.logger.Warn("secondary classifier timed out", "timeout", a.timeout)
		return Result{}, false
	}
	if res.err != nil {
		a.logger.Warn("secondary classifier failed", "error", res.err)
		return Result{}, false
	}

	idx, conf := argmax(res.scores)
	if idx < 0 || conf < 0 || conf > 1 || math.IsNaN(conf) {
		a.logger.Warn("secondary classifier score out of range", "score", conf)
		return Result{}, false
	}
	if conf <= a.threshold {
		return Result{}, false
	}
	label, ok := LabelAt(idx)
	if !ok {
		return Result{}, false
	}
	return Result{Label: label, Confidence: conf}, true
}

// argmax returns the first index of the largest score, or -1 when empty.
func argmax(scores []float64) (int, float64) {
	idx, best := -1, 0.0
	for i, s := range scores {
		if idx < 0 || s > best {
			idx, best = i, s
		}
	}
	return idx, best
}
