package landmark

// Synthetic geometry used by Pose. The hand is upright in image coordinates
// (Y decreases going up) with the wrist at the bottom centre.
var (
	poseWrist = Point3D{X: 0.50, Y: 0.90}

	// Finger columns: index, middle, ring, pinky.
	poseColumns = [4]float64{0.56, 0.50, 0.44, 0.38}
	poseMCPRow  = [4]float64{0.70, 0.68, 0.70, 0.72}

	poseJoints = [4][4]int{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	}
)

// Pose builds a right hand with the given fingers extended and the others
// curled back towards the palm. The thumb is either spread away from the
// palm or folded across it.
func Pose(index, middle, ring, pinky, thumb bool) Hand {
	h := Hand{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = poseWrist

	for f, up := range [4]bool{index, middle, ring, pinky} {
		x := poseColumns[f]
		j := poseJoints[f]
		h.Points[j[0]] = Point3D{X: x, Y: poseMCPRow[f]}
		if up {
			h.Points[j[1]] = Point3D{X: x, Y: 0.58}
			h.Points[j[2]] = Point3D{X: x, Y: 0.50}
			h.Points[j[3]] = Point3D{X: x, Y: 0.42}
		} else {
			h.Points[j[1]] = Point3D{X: x, Y: 0.62, Z: -0.03}
			h.Points[j[2]] = Point3D{X: x, Y: 0.68, Z: -0.04}
			h.Points[j[3]] = Point3D{X: x, Y: 0.74, Z: -0.02}
		}
	}

	h.Points[ThumbCMC] = Point3D{X: 0.58, Y: 0.84}
	h.Points[ThumbMCP] = Point3D{X: 0.64, Y: 0.78}
	if thumb {
		h.Points[ThumbIP] = Point3D{X: 0.72, Y: 0.72}
		h.Points[ThumbTip] = Point3D{X: 0.80, Y: 0.66}
	} else {
		h.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.74, Z: -0.02}
		h.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.03}
	}

	return h
}

// OpenPalm returns a hand with all five digits extended.
func OpenPalm() Hand { return Pose(true, true, true, true, true) }

// Fist returns a closed hand with the thumb folded over the fingers.
func Fist() Hand { return Pose(false, false, false, false, false) }

// ThumbsUp returns a closed hand with only the thumb extended.
func ThumbsUp() Hand { return Pose(false, false, false, false, true) }
