// Package app runs local recognition: camera frames through hand detection
// and the gesture engine into a single session.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/signsync/internal/capture"
	"github.com/ayusman/signsync/internal/detector"
	"github.com/ayusman/signsync/internal/landmark"
	"github.com/ayusman/signsync/internal/locale"
	"github.com/ayusman/signsync/internal/session"
)

// SessionID is the session local frames are applied to.
const SessionID = "local"

// DefaultMotionThreshold is the changed-pixel percentage that triggers a
// fresh detection.
const DefaultMotionThreshold = 1.0

// Config holds configuration options for local mode.
type Config struct {
	Locale       locale.Locale
	MotionThresh float64
	// MaxReplay bounds how many consecutive still frames reuse the last
	// detection before the detector runs again.
	MaxReplay int
}

// App is the local recognition loop.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	sessions *session.Manager
	gate     *capture.MotionGate
	logger   *slog.Logger

	mu        sync.RWMutex
	enabled   bool
	callbacks []func(session.Snapshot)

	lastHands []landmark.Hand
	replayed  int
}

// New creates an App. The camera and detector are owned by the App and
// closed when Run returns.
func New(config Config, cam capture.Camera, det detector.Detector, sessions *session.Manager, logger *slog.Logger) *App {
	if config.Locale == "" {
		config.Locale = locale.English
	}
	if config.MotionThresh == 0 {
		config.MotionThresh = DefaultMotionThreshold
	}
	if config.MaxReplay <= 0 {
		config.MaxReplay = 15
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		config:   config,
		camera:   cam,
		detector: det,
		sessions: sessions,
		gate:     capture.NewMotionGate(config.MotionThresh),
		logger:   logger,
		enabled:  true,
	}
}

// SetEnabled pauses or resumes recognition.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.logger.Info("local recognition toggled", "enabled", enabled)
}

// IsEnabled returns whether recognition is running.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnFrame registers a callback run with every processed frame's snapshot.
func (a *App) OnFrame(fn func(session.Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, fn)
}

// Reset clears the local session.
func (a *App) Reset() {
	a.sessions.Reset(SessionID)
	a.gate.Reset()
}

// Run opens the camera and processes frames at the camera's rate until
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return err
	}
	defer a.close()

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	a.logger.Info("local recognition started", "fps", fps, "locale", a.config.Locale)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("local recognition stopped")
			return nil
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if _, err := a.Step(ctx); err != nil {
				if errors.Is(err, capture.ErrCameraNotOpen) {
					return err
				}
				a.logger.Debug("frame skipped", "error", err)
			}
		}
	}
}

// Step reads and processes one frame. It must not run concurrently with Run.
func (a *App) Step(ctx context.Context) (session.Snapshot, error) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return session.Snapshot{}, err
	}
	defer frame.Close()

	hands, err := a.detect(frame)
	if err != nil {
		return session.Snapshot{}, err
	}

	snap := a.sessions.Process(ctx, SessionID, hands, a.config.Locale)

	a.mu.RLock()
	callbacks := a.callbacks
	a.mu.RUnlock()
	for _, fn := range callbacks {
		fn(snap)
	}

	return snap, nil
}
