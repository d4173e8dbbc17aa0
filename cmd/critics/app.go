package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dusk-indust/critics/internal/config"
	"github.com/dusk-indust/critics/internal/llm"
	"github.com/dusk-indust/critics/internal/persona"
	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/service"
	"github.com/dusk-indust/critics/internal/status"
	"github.com/dusk-indust/critics/internal/store"
	"github.com/dusk-indust/critics/internal/synth"
)

// app is the wired dependency set shared by every subcommand.
type app struct {
	cfg   config.Config
	store *store.SQLiteStore
	svc   *service.Service
}

// newApp loads configuration and wires the store, generator, orchestrator
// and synthesis engine. Callers must Close the returned app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.Verbose {
		log.SetFlags(0)
	}

	catalog, err := loadCatalog(cfg.PersonasFile)
	if err != nil {
		return nil, err
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	orch := review.NewOrchestrator(catalog, gen, review.WithMaxTokens(cfg.ReviewMaxTokens))
	engine := synth.NewEngine(gen,
		synth.WithModel(cfg.SynthesisModel),
		synth.WithMaxTokens(cfg.SynthesisMaxTokens),
	)

	return &app{
		cfg:   cfg,
		store: st,
		svc:   service.New(st, orch, engine),
	}, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.store.Close()
}

// checks returns the readiness probes for this configuration.
func (a *app) checks() []status.Checker {
	return []status.Checker{
		status.Store(a.store),
		status.APIKey(a.cfg.Provider, a.cfg.APIKey),
		status.DataDir(a.cfg.DBPath),
	}
}

// requireKey fails fast when a command is about to call the provider
// without credentials.
func (a *app) requireKey() error {
	if a.cfg.APIKey == "" {
		return fmt.Errorf("no API key: set %s or CRITICS_API_KEY", a.cfg.KeyEnv())
	}
	return nil
}

func loadCatalog(path string) (*persona.Catalog, error) {
	if path == "" {
		return persona.DefaultCatalog(), nil
	}
	return persona.LoadFile(path)
}

func buildGenerator(cfg config.Config) (llm.Generator, error) {
	opts := []llm.ClientOption{
		llm.WithTimeout(cfg.HTTPTimeout),
		llm.WithBaseURL(cfg.BaseURL),
	}
	if cfg.ReviewModel != "" {
		opts = append(opts, llm.WithDefaultModel(cfg.ReviewModel))
	}
	return llm.New(cfg.Provider, cfg.APIKey, opts...)
}
