package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/signsync/internal/config"
	"github.com/ayusman/signsync/internal/server"
	"github.com/ayusman/signsync/internal/session"
	"github.com/ayusman/signsync/internal/store"
)

func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveStatic != "" {
		cfg.Server.StaticDir = serveStatic
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = findWebDir()
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
	st := do.MustInvoke[*store.Store](di)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Sessions:  sessions,
		Store:     st,
		StaticDir: cfg.Server.StaticDir,
		Logger:    slog.Default(),
	})
	if cfg.Server.StaticDir != "" {
		slog.Info("serving static files", "dir", cfg.Server.StaticDir)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, cfg.Server.Addr)
	})
	g.Go(func() error {
		return runSweeper(ctx, cfg.Session, sessions)
	})

	return g.Wait()
}

// runSweeper drops idle sessions on the configured cron schedule until ctx
// is done.
func runSweeper(ctx context.Context, cfg config.Session, sessions *session.Manager) error {
	c := cron.New()
	if _, err := c.AddFunc(cfg.Sweep, func() {
		sessions.Sweep(cfg.IdleTTL)
	}); err != nil {
		return oops.Errorf("invalid session.sweep %q: %w", cfg.Sweep, err)
	}

	c.Start()
	slog.Info("session sweeper scheduled", "schedule", cfg.Sweep, "idle_ttl", cfg.IdleTTL)

	<-ctx.Done()
	select {
	case <-c.Stop().Done():
	case <-time.After(5 * time.Second):
	}
	return nil
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	candidates := []string{"web", "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".signsync", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
