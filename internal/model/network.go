// Package model runs a small feed-forward network exported from a trained
// hand-pose classifier. It is the optional secondary scorer for the
// gesture arbiter.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/landmark"
)

// Activation names accepted in a model file.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSoftmax = "softmax"
)

// ErrInputSize is returned when Score gets the wrong number of features.
var ErrInputSize = errors.New("input size does not match model")

// Layer is a dense layer. Weights are indexed [input][output], matching a
// Keras Dense kernel.
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// Network is a loaded model.
type Network struct {
	Classes []string `json:"classes,omitempty"`
	Layers  []Layer  `json:"layers"`
}

// Load reads a model file from path.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	n, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return n, nil
}

// Parse decodes and validates a model from r.
func Parse(r io.Reader) (*Network, error) {
	var n Network
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// validate checks layer shapes chain from 63 inputs, the output is a
// softmax, and class names, when present, follow vocabulary order.
func (n *Network) validate() error {
	if len(n.Layers) == 0 {
		return errors.New("model has no layers")
	}

	in := landmark.FlatLen
	for i, l := range n.Layers {
		if len(l.Weights) != in {
			return fmt.Errorf("layer %d: got %d weight rows, want %d", i, len(l.Weights), in)
		}
		out := len(l.Bias)
		if out == 0 {
			return fmt.Errorf("layer %d: empty bias", i)
		}
		for r, row := range l.Weights {
			if len(row) != out {
				return fmt.Errorf("layer %d row %d: got %d columns, want %d", i, r, len(row), out)
			}
		}
		switch l.Activation {
		case "", ActivationLinear, ActivationReLU, ActivationSoftmax:
		default:
			return fmt.Errorf("layer %d: unsupported activation %q", i, l.Activation)
		}
		in = out
	}
	if last := n.Layers[len(n.Layers)-1]; last.Activation != ActivationSoftmax {
		return fmt.Errorf("final layer activation is %q, want %q", last.Activation, ActivationSoftmax)
	}

	if len(n.Classes) > 0 {
		if len(n.Classes) != in {
			return fmt.Errorf("model has %d classes but %d outputs", len(n.Classes), in)
		}
		for i, c := range n.Classes {
			if label, ok := gesture.LabelAt(i); ok && string(label) != c {
				return fmt.Errorf("class %d is %q, want %q", i, c, label)
			}
		}
	}
	return nil
}

// Outputs returns the size of the final layer.
func (n *Network) Outputs() int {
	return len(n.Layers[len(n.Layers)-1].Bias)
}

// Score runs a forward pass over the flattened landmarks.
func (n *Network) Score(ctx context.Context, input []float64) ([]float64, error) {
	if len(input) != len(n.Layers[0].Weights) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInputSize, len(input), len(n.Layers[0].Weights))
	}

	x := input
	for _, l := range n.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x = l.forward(x)
	}
	return x, nil
}

func (l *Layer) forward(x []float64) []float64 {
	out := make([]float64, len(l.Bias))
	copy(out, l.Bias)
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		row := l.Weights[i]
		for j := range out {
			out[j] += xi * row[j]
		}
	}

	switch l.Activation {
	case ActivationReLU:
		for j, v := range out {
			if v < 0 {
				out[j] = 0
			}
		}
	case ActivationSoftmax:
		softmax(out)
	}
	return out
}

func softmax(v []float64) {
	peak := math.Inf(-1)
	for _, x := range v {
		peak = math.Max(peak, x)
	}
	var sum float64
	for i, x := range v {
		v[i] = math.Exp(x - peak)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}
