// Package gesture provides the rule-based sign classifier and the per-frame
// recognition engine built on top of it.
package gesture

import "slices"

// Label is a canonical gesture name.
type Label string

// Canonical vocabulary, in the order a secondary model indexes its outputs.
const (
	Hello    Label = "HELLO"
	ThankYou Label = "THANK YOU"
	Yes      Label = "YES"
	No       Label = "NO"
	ILoveYou Label = "I LOVE YOU"
	Help     Label = "HELP"
	Stop     Label = "STOP"
	One      Label = "ONE"
	Wait     Label = "WAIT"
	Good     Label = "GOOD"
	Sorry    Label = "SORRY"
	Please   Label = "PLEASE"
	Little   Label = "LITTLE"
	Perfect  Label = "PERFECT"
	Water    Label = "WATER"
)

// Sentinel labels that are never part of the vocabulary.
const (
	Unknown Label = "Unknown"
	NoHand  Label = "No Hand"
)

var vocabulary = []Label{
	Hello, ThankYou, Yes, No, ILoveYou, Help, Stop,
	One, Wait, Good, Sorry, Please, Little, Perfect, Water,
}

// Vocabulary returns the closed set of canonical labels.
func Vocabulary() []Label {
	return slices.Clone(vocabulary)
}

// VocabularySize is the number of canonical labels.
func VocabularySize() int {
	return len(vocabulary)
}

// LabelAt returns the canonical label for a model output index.
func LabelAt(i int) (Label, bool) {
	if i < 0 || i >= len(vocabulary) {
		return "", false
	}
	return vocabulary[i], true
}

// Known reports whether l is a canonical label.
func (l Label) Known() bool {
	return slices.Contains(vocabulary, l)
}

// String returns the label text.
func (l Label) String() string {
	return string(l)
}
