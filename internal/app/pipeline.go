package app

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/signsync/internal/landmark"
)

// detect runs the detector on changed frames and replays the previous
// hands on still frames, up to MaxReplay in a row. A held sign keeps
// advancing confirmation without a detector call per frame.
func (a *App) detect(frame *gocv.Mat) ([]landmark.Hand, error) {
	changed, _ := a.gate.Changed(frame)
	if !changed && a.lastHands != nil && a.replayed < a.config.MaxReplay {
		a.replayed++
		return a.lastHands, nil
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.lastHands = nil
		return nil, err
	}

	a.lastHands = hands
	a.replayed = 0
	return hands, nil
}

func (a *App) close() {
	if err := a.camera.Close(); err != nil {
		a.logger.Warn("failed to close camera", "error", err)
	}

	a.gate.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Warn("failed to close detector", "error", err)
		}
	}
}
