package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/locale"
	"github.com/ayusman/signsync/internal/server/api"
)

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return oops.Errorf("failed to read frame: %w", err)
	}

	engine, err := buildEngine(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}

	return classifyFrame(cmd, engine, data, classifyLang)
}

func classifyFrame(cmd *cobra.Command, engine *gesture.Engine, data []byte, lang string) error {
	var req api.PredictRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return oops.Errorf("failed to parse frame: %w", err)
	}
	if lang == "" {
		lang = req.Lang
	}
	loc := locale.Parse(lang)

	hands, err := req.Hands()
	if err != nil {
		return err
	}

	frame := engine.ClassifyFrame(cmd.Context(), hands)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "engine: %s\n", engine.Name())
	for i := range hands {
		f := gesture.ExtractFeatures(&hands[i])
		d := frame.Detections[i]
		fmt.Fprintf(out, "hand %d: %s (%.2f) fingers=%s\n", i, loc.Display(d.Label), d.Confidence, describeFingers(f))
	}
	fmt.Fprintf(out, "best: %s (%.2f)\n", loc.Display(frame.Best.Label), frame.Best.Confidence)
	return nil
}

func describeFingers(f gesture.FingerState) string {
	mark := func(up bool) byte {
		if up {
			return '1'
		}
		return '0'
	}
	// thumb, index, middle, ring, pinky
	return string([]byte{mark(f.Thumb), mark(f.Index), mark(f.Middle), mark(f.Ring), mark(f.Pinky)})
}
