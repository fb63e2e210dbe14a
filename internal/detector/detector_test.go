package detector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/signsync/internal/landmark"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector(landmark.OpenPalm(), landmark.Fist())

		frame := gocv.NewMat()
		defer frame.Close()

		hands, err := mock.Detect(&frame)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(hands) != 2 {
			t.Fatalf("expected 2 hands, got %d", len(hands))
		}
		if hands[0].Points != landmark.OpenPalm().Points {
			t.Error("first hand should be the open palm")
		}
		if mock.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		want := errors.New("camera glare")
		mock.SetError(want)

		frame := gocv.NewMat()
		defer frame.Close()

		if _, err := mock.Detect(&frame); !errors.Is(err, want) {
			t.Errorf("Detect() error = %v, want %v", err, want)
		}
	})

	t.Run("close is recorded", func(t *testing.T) {
		mock := NewMockDetector()
		if err := mock.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if !mock.Closed() {
			t.Error("Closed() should be true")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 2 || cfg.MinConfidence != 0.5 || cfg.MinTrackingConf != 0.5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.IdleTimeout <= 0 {
		t.Error("IdleTimeout should be positive")
	}
}

func TestNewMediaPipeDetector_Script(t *testing.T) {
	t.Run("missing explicit script", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ScriptPath = filepath.Join(t.TempDir(), ScriptName)
		if _, err := NewMediaPipeDetector(cfg, nil); err == nil {
			t.Error("expected error for missing script")
		}
	})

	t.Run("explicit script and interpreter", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), ScriptName)
		if err := os.WriteFile(script, []byte("# bridge\n"), 0o644); err != nil {
			t.Fatalf("write script: %v", err)
		}
		cfg := DefaultConfig()
		cfg.ScriptPath = script
		cfg.PythonPath = "/usr/bin/python3"

		d, err := NewMediaPipeDetector(cfg, nil)
		if err != nil {
			t.Fatalf("NewMediaPipeDetector() error = %v", err)
		}
		args := strings.Join(d.args(), " ")
		if !strings.HasPrefix(args, script) || !strings.Contains(args, "--max-hands 2") || !strings.Contains(args, "--min-detection 0.5") {
			t.Errorf("args = %q", args)
		}
		if err := d.Close(); err != nil {
			t.Errorf("Close() before start should be a no-op, got %v", err)
		}
	})
}

func handLine(n int) string {
	var b strings.Builder
	b.WriteString(`{"hands":[{"handedness":"Left","score":0.9,"points":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"x":0.5,"y":0.5,"z":0}`)
	}
	b.WriteString("]}]}\n")
	return b.String()
}

func TestExchange(t *testing.T) {
	var sent bytes.Buffer
	reply := bufio.NewReader(strings.NewReader(handLine(landmark.NumLandmarks)))

	hands, err := exchange(&sent, reply, []byte("jpegdata"))
	if err != nil {
		t.Fatalf("exchange() error = %v", err)
	}

	frame := sent.Bytes()
	if got := binary.BigEndian.Uint32(frame[:4]); got != 8 {
		t.Errorf("length prefix = %d, want 8", got)
	}
	if string(frame[4:]) != "jpegdata" {
		t.Errorf("payload = %q", frame[4:])
	}

	if len(hands) != 1 || hands[0].Handedness != "Left" || hands[0].Score != 0.9 {
		t.Fatalf("hands = %+v", hands)
	}
	if hands[0].Points[landmark.PinkyTip].X != 0.5 {
		t.Error("points not decoded")
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    int
		wantErr bool
	}{
		{"no hands", `{"hands":[]}`, 0, false},
		{"one hand", handLine(21), 1, false},
		{"short hand", handLine(5), 0, true},
		{"service error", `{"error":"no model"}`, 0, true},
		{"garbage", `not json`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := decodeResponse([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(hands) != tt.want {
				t.Errorf("len(hands) = %d, want %d", len(hands), tt.want)
			}
		})
	}
}
