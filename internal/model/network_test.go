package model

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/landmark"
)

// biasNetwork builds a single softmax layer whose output depends only on bias.
func biasNetwork(outputs, hot int) *Network {
	weights := make([][]float64, landmark.FlatLen)
	for i := range weights {
		weights[i] = make([]float64, outputs)
	}
	bias := make([]float64, outputs)
	bias[hot] = 10

	return &Network{
		Layers: []Layer{{Weights: weights, Bias: bias, Activation: ActivationSoftmax}},
	}
}

func writeModel(t *testing.T, n *Network) string {
	t.Helper()

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal model: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestLoad_Score(t *testing.T) {
	path := writeModel(t, biasNetwork(7, 2))

	n, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n.Outputs() != 7 {
		t.Errorf("Outputs() = %d, want 7", n.Outputs())
	}

	hand := landmark.OpenPalm()
	scores, err := n.Score(context.Background(), hand.Flatten())
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	var sum float64
	best := 0
	for i, s := range scores {
		sum += s
		if s > scores[best] {
			best = i
		}
	}
	if best != 2 {
		t.Errorf("argmax = %d, want 2", best)
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("softmax sum = %f, want 1", sum)
	}
	if scores[2] < 0.99 {
		t.Errorf("hot score = %f, want > 0.99", scores[2])
	}
}

func TestNetwork_HiddenLayerReLU(t *testing.T) {
	hidden := make([][]float64, landmark.FlatLen)
	for i := range hidden {
		hidden[i] = []float64{1, -1}
	}
	n := &Network{Layers: []Layer{
		{Weights: hidden, Bias: []float64{0, 0}, Activation: ActivationReLU},
		{Weights: [][]float64{{2, 0}, {5, 0}}, Bias: []float64{1, 0}, Activation: ActivationSoftmax},
	}}
	if err := n.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	input := make([]float64, landmark.FlatLen)
	input[0] = 1.5

	// hidden = relu([1.5, -1.5]) = [1.5, 0]; logits = [1 + 2*1.5, 0] = [4, 0]
	out, err := n.Score(context.Background(), input)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	want := math.Exp(4) / (math.Exp(4) + 1)
	if len(out) != 2 || math.Abs(out[0]-want) > 1e-9 || math.Abs(out[0]+out[1]-1) > 1e-9 {
		t.Errorf("Score() = %v, want [%f %f]", out, want, 1-want)
	}
}

func TestParse_Invalid(t *testing.T) {
	good := biasNetwork(3, 0)

	tests := []struct {
		name   string
		mutate func(n *Network)
		want   string
	}{
		{"no layers", func(n *Network) { n.Layers = nil }, "no layers"},
		{"wrong input rows", func(n *Network) { n.Layers[0].Weights = n.Layers[0].Weights[:10] }, "weight rows"},
		{"ragged row", func(n *Network) { n.Layers[0].Weights[5] = []float64{1} }, "columns"},
		{"bad activation", func(n *Network) { n.Layers[0].Activation = "tanh" }, "activation"},
		{"linear output", func(n *Network) { n.Layers[0].Activation = ActivationLinear }, "final layer"},
		{"relu output", func(n *Network) { n.Layers[0].Activation = ActivationReLU }, "final layer"},
		{"default output", func(n *Network) { n.Layers[0].Activation = "" }, "final layer"},
		{"class count", func(n *Network) { n.Classes = []string{"HELLO"} }, "classes"},
		{"class order", func(n *Network) { n.Classes = []string{"HELLO", "YES", "THANK YOU"} }, "want"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := json.Marshal(good)
			var n Network
			json.Unmarshal(data, &n)
			tt.mutate(&n)
			data, _ = json.Marshal(&n)

			_, err := Parse(strings.NewReader(string(data)))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParse_ClassesInVocabularyOrder(t *testing.T) {
	n := biasNetwork(3, 0)
	n.Classes = []string{"HELLO", "THANK YOU", "YES"}
	data, _ := json.Marshal(n)

	if _, err := Parse(strings.NewReader(string(data))); err != nil {
		t.Errorf("Parse() error = %v", err)
	}
}

func TestScore_InputSize(t *testing.T) {
	n := biasNetwork(3, 0)
	if _, err := n.Score(context.Background(), []float64{1, 2, 3}); !errors.Is(err, ErrInputSize) {
		t.Errorf("expected ErrInputSize, got %v", err)
	}
}

func TestNetwork_DrivesArbiterFallback(t *testing.T) {
	// Index 3 is NO; the rules see a fist (YES, not reserved).
	n := biasNetwork(gesture.VocabularySize(), 3)
	a := gesture.NewArbiter(gesture.WithScorer(n))
	fist := landmark.Fist()

	got := a.Classify(context.Background(), &fist)
	if got.Label != gesture.No {
		t.Errorf("Classify() = %s, want NO from model", got.Label)
	}
}
