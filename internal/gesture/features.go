package gesture

import "github.com/ayusman/signsync/internal/landmark"

// FingerState holds the extension flags derived from one hand.
type FingerState struct {
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
	Thumb  bool
}

// Count returns the number of extended fingers, not counting the thumb.
func (f FingerState) Count() int {
	n := 0
	for _, up := range [4]bool{f.Index, f.Middle, f.Ring, f.Pinky} {
		if up {
			n++
		}
	}
	return n
}

// fingerJoints pairs each finger's tip with its PIP joint.
var fingerJoints = [4][2]int{
	{landmark.IndexTip, landmark.IndexPIP},
	{landmark.MiddleTip, landmark.MiddlePIP},
	{landmark.RingTip, landmark.RingPIP},
	{landmark.PinkyTip, landmark.PinkyPIP},
}

// ExtractFeatures derives finger extension from wrist-anchored distances.
//
// A finger is up when its tip is further from the wrist than its PIP joint.
// The thumb is up when its tip is further from the pinky base than the
// thumb MCP is, since its PIP geometry does not hold across orientations.
func ExtractFeatures(h *landmark.Hand) FingerState {
	var up [4]bool
	for i, j := range fingerJoints {
		up[i] = h.Distance(j[0], landmark.Wrist) > h.Distance(j[1], landmark.Wrist)
	}

	return FingerState{
		Index:  up[0],
		Middle: up[1],
		Ring:   up[2],
		Pinky:  up[3],
		Thumb:  h.Distance(landmark.ThumbTip, landmark.PinkyMCP) > h.Distance(landmark.ThumbMCP, landmark.PinkyMCP),
	}
}
