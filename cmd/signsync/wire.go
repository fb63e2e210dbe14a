package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do"
	"github.com/samber/oops"

	"github.com/ayusman/signsync/internal/config"
	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/model"
	"github.com/ayusman/signsync/internal/session"
	"github.com/ayusman/signsync/internal/store"
)

// newInjector registers the shared services built from cfg.
func newInjector(cfg *config.Config) *do.Injector {
	di := do.New()
	do.ProvideValue(di, cfg)
	do.ProvideValue(di, slog.Default())
	do.Provide(di, provideStore)
	do.Provide(di, provideEngine)
	do.Provide(di, provideSessions)
	return di
}

func provideStore(di *do.Injector) (*store.Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
		return nil, oops.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(cfg.DB.Path)
	if err != nil {
		return nil, oops.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func provideEngine(di *do.Injector) (*gesture.Engine, error) {
	return buildEngine(do.MustInvoke[*config.Config](di), do.MustInvoke[*slog.Logger](di))
}

func provideSessions(di *do.Injector) (*session.Manager, error) {
	st, err := do.Invoke[*store.Store](di)
	if err != nil {
		return nil, err
	}
	engine, err := do.Invoke[*gesture.Engine](di)
	if err != nil {
		return nil, err
	}
	return session.NewManager(engine,
		session.WithSink(st.Transcripts()),
		session.WithLogger(do.MustInvoke[*slog.Logger](di)),
	), nil
}

// buildEngine loads the secondary model when configured. Without one the
// engine classifies with rules only.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*gesture.Engine, error) {
	opts := []gesture.ArbiterOption{
		gesture.WithThreshold(cfg.Model.Threshold),
		gesture.WithTimeout(cfg.Model.Timeout),
		gesture.WithLogger(logger),
	}

	if cfg.Model.Path != "" {
		net, err := model.Load(cfg.Model.Path)
		if err != nil {
			return nil, oops.Errorf("failed to load model: %w", err)
		}
		opts = append(opts, gesture.WithScorer(net))
		logger.Info("secondary model loaded", "path", cfg.Model.Path, "classes", net.Outputs())
	}

	engine := gesture.NewEngine(gesture.NewArbiter(opts...))
	logger.Info("gesture engine ready", "engine", engine.Name())
	return engine, nil
}
