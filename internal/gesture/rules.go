package gesture

// Result is a label with its trust weight.
type Result struct {
	Label      Label   `json:"gesture"`
	Confidence float64 `json:"confidence"`
}

// UnknownResult is returned when nothing matches.
var UnknownResult = Result{Label: Unknown, Confidence: 0}

// Rule maps a finger-state predicate to a label. Confidence is a fixed
// priority weight, not a probability.
type Rule struct {
	Label      Label
	Confidence float64
	Match      func(f FingerState) bool
}

// DefaultRules returns the rule cascade. Order is priority: several
// finger states satisfy more than one predicate and the first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{Hello, 0.95, func(f FingerState) bool { return f.Count() == 4 && f.Thumb }},
		{Yes, 0.92, func(f FingerState) bool { return f.Count() == 0 && !f.Thumb }},
		{No, 0.90, func(f FingerState) bool { return f.Index && f.Middle && !f.Ring && !f.Pinky }},
		{ILoveYou, 0.96, func(f FingerState) bool { return f.Index && f.Pinky && !f.Middle && !f.Ring && f.Thumb }},
		{Help, 0.88, func(f FingerState) bool { return f.Thumb && f.Count() == 0 }},
		// Four fingers without the thumb; with the thumb HELLO already matched.
		{Stop, 0.86, func(f FingerState) bool { return f.Count() == 4 }},
		{ThankYou, 0.89, func(f FingerState) bool { return f.Index && f.Middle && f.Ring && !f.Pinky }},
		{One, 0.91, func(f FingerState) bool { return f.Index && !f.Middle && !f.Ring && !f.Pinky && !f.Thumb }},
		{Little, 0.88, func(f FingerState) bool { return f.Pinky && !f.Index && !f.Middle && !f.Ring && !f.Thumb }},
		{Good, 0.90, func(f FingerState) bool { return f.Thumb && f.Index && !f.Middle && !f.Ring && !f.Pinky }},
		{Perfect, 0.87, func(f FingerState) bool { return f.Thumb && f.Middle && !f.Index && !f.Ring && !f.Pinky }},
		{Sorry, 0.85, func(f FingerState) bool { return f.Middle && f.Pinky && !f.Index && !f.Ring }},
		{Please, 0.86, func(f FingerState) bool { return f.Index && f.Ring && f.Pinky && !f.Middle }},
		{Wait, 0.87, func(f FingerState) bool { return f.Middle && f.Ring && f.Pinky && !f.Index }},
		{Water, 0.84, func(f FingerState) bool { return f.Thumb && f.Ring && f.Pinky && !f.Index && !f.Middle }},
	}
}

// RuleClassifier evaluates an ordered rule list.
type RuleClassifier struct {
	rules []Rule
}

// NewRuleClassifier creates a classifier over DefaultRules.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{rules: DefaultRules()}
}

// Rules returns the rules in evaluation order.
func (c *RuleClassifier) Rules() []Rule {
	return c.rules
}

// Classify returns the first matching rule's label, or UnknownResult.
func (c *RuleClassifier) Classify(f FingerState) Result {
	for _, r := range c.rules {
		if r.Match(f) {
			return Result{Label: r.Label, Confidence: r.Confidence}
		}
	}
	return UnknownResult
}
