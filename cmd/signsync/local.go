package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/signsync/internal/app"
	"github.com/ayusman/signsync/internal/capture"
	"github.com/ayusman/signsync/internal/detector"
	"github.com/ayusman/signsync/internal/locale"
	"github.com/ayusman/signsync/internal/session"
	"github.com/ayusman/signsync/internal/tray"
)

func runLocalCmd(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	if localCamera >= 0 {
		cfg.Local.CameraID = localCamera
	}
	if localLocale != "" {
		cfg.Local.Locale = localLocale
	}

	di := newInjector(cfg)
	defer func() {
		if err := di.Shutdown(); err != nil {
			slog.Warn("shutdown failed", "error", err)
		}
	}()

	sessions, err := do.Invoke[*session.Manager](di)
	if err != nil {
		return err
	}

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), slog.Default())
	if err != nil {
		return err
	}

	cam := capture.NewCamera(capture.Config{DeviceID: cfg.Local.CameraID, FPS: cfg.Local.FPS})
	local := app.New(app.Config{Locale: locale.Parse(cfg.Local.Locale)}, cam, det, sessions, slog.Default())

	local.OnFrame(func(s session.Snapshot) {
		if s.Confirmed != "" {
			slog.Info("sentence updated", "token", s.Confirmed, "sentence", s.Sentence)
		}
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if localNoTray {
		return local.Run(ctx)
	}
	return runWithTray(ctx, stop, local)
}

// runWithTray runs recognition in the background while the tray owns the
// calling goroutine, as systray requires.
func runWithTray(ctx context.Context, stop context.CancelFunc, local *app.App) error {
	t := tray.New()
	t.OnToggle(local.SetEnabled)
	t.OnReset(local.Reset)
	t.OnQuit(stop)

	local.OnFrame(func(s session.Snapshot) {
		t.SetState(s.Confirmed, s.Sentence)
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer t.Quit()
		return local.Run(ctx)
	})

	t.Run()
	stop()
	return g.Wait()
}
