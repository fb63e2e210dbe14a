// Package landmark defines the 21-point hand skeleton consumed by the gesture engine.
package landmark

import (
	"encoding/json"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20

	// NumLandmarks is the number of points in one hand skeleton.
	NumLandmarks = 21
	// FlatLen is the length of a flattened (x, y, z) landmark vector.
	FlatLen = NumLandmarks * 3
)

// InputShapeError reports a landmark payload that is not 21 (x, y, z) points.
type InputShapeError struct {
	Got    int
	Want   int
	Reason string
}

func (e *InputShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid landmark input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid landmark input: got %d values, want %d", e.Got, e.Want)
}

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand holds the 21 landmarks of one detected hand.
type Hand struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64               `json:"score,omitempty"`
}

// Distance returns the Euclidean distance between landmarks i and j.
func (h *Hand) Distance(i, j int) float64 {
	return distance3D(h.Points[i], h.Points[j])
}

// Flatten returns the landmarks as x0, y0, z0, x1, ... in index order.
func (h *Hand) Flatten() []float64 {
	flat := make([]float64, 0, FlatLen)
	for _, p := range h.Points {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	return flat
}

// FromFlat builds a Hand from exactly 63 values.
func FromFlat(values []float64) (Hand, error) {
	var h Hand
	if len(values) != FlatLen {
		return h, &InputShapeError{Got: len(values), Want: FlatLen}
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return h, &InputShapeError{Reason: fmt.Sprintf("value %d is not a finite number", i)}
		}
	}
	for i := 0; i < NumLandmarks; i++ {
		h.Points[i] = Point3D{X: values[3*i], Y: values[3*i+1], Z: values[3*i+2]}
	}
	return h, nil
}

// ParseHand decodes one hand from JSON. It accepts 63 flat numbers,
// 21 [x, y, z] triples, or 21 {"x", "y", "z"} objects. A null or missing
// coordinate is rejected rather than read as zero.
func ParseHand(raw json.RawMessage) (Hand, error) {
	var flat []*float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		values, err := derefAll(flat, "value")
		if err != nil {
			return Hand{}, err
		}
		return FromFlat(values)
	}

	var triples [][]*float64
	if err := json.Unmarshal(raw, &triples); err == nil {
		if len(triples) != NumLandmarks {
			return Hand{}, &InputShapeError{Got: len(triples), Want: NumLandmarks, Reason: fmt.Sprintf("got %d points, want %d", len(triples), NumLandmarks)}
		}
		values := make([]float64, 0, FlatLen)
		for i, t := range triples {
			if len(t) != 3 {
				return Hand{}, &InputShapeError{Reason: fmt.Sprintf("point %d has %d coordinates, want 3", i, len(t))}
			}
			xyz, err := derefAll(t, fmt.Sprintf("point %d coordinate", i))
			if err != nil {
				return Hand{}, err
			}
			values = append(values, xyz...)
		}
		return FromFlat(values)
	}

	var points []struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		Z *float64 `json:"z"`
	}
	if err := json.Unmarshal(raw, &points); err == nil {
		if len(points) != NumLandmarks {
			return Hand{}, &InputShapeError{Got: len(points), Want: NumLandmarks, Reason: fmt.Sprintf("got %d points, want %d", len(points), NumLandmarks)}
		}
		values := make([]float64, 0, FlatLen)
		for i, p := range points {
			xyz, err := derefAll([]*float64{p.X, p.Y, p.Z}, fmt.Sprintf("point %d coordinate", i))
			if err != nil {
				return Hand{}, err
			}
			values = append(values, xyz...)
		}
		return FromFlat(values)
	}

	return Hand{}, &InputShapeError{Reason: "landmarks must be numbers, [x,y,z] triples or {x,y,z} objects"}
}

// derefAll fails on the first nil entry, naming it with what.
func derefAll(ptrs []*float64, what string) ([]float64, error) {
	values := make([]float64, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			return nil, &InputShapeError{Reason: fmt.Sprintf("%s %d is not a number", what, i)}
		}
		values[i] = *p
	}
	return values, nil
}

// ParseHands decodes every hand in a frame, failing on the first malformed one.
func ParseHands(raws []json.RawMessage) ([]Hand, error) {
	hands := make([]Hand, 0, len(raws))
	for i, raw := range raws {
		h, err := ParseHand(raw)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		hands = append(hands, h)
	}
	return hands, nil
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
