package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/catalog"
	"github.com/abhisek/prepwise/internal/coach"
	"github.com/abhisek/prepwise/internal/config"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/logging"
	"github.com/abhisek/prepwise/internal/progression"
	"github.com/abhisek/prepwise/internal/store"
)

// env holds what a command needs once configuration is loaded.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	catalog *catalog.Catalog
}

// loadEnv reads configuration and builds the logger. It does not touch
// the database.
func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return &env{cfg: cfg, log: log}, nil
}

// openEnv is loadEnv plus the store and the content catalog.
func openEnv(cmd *cobra.Command) (*env, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := e.cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	e.store, err = store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.catalog, err = catalog.Default()
	if err != nil {
		_ = e.store.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	e.log.Debug("environment ready", zap.String("db", dbPath), zap.String("learner", e.cfg.Learner))
	return e, nil
}

func (e *env) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
	_ = e.log.Sync()
}

func (e *env) progression() *progression.Service {
	return progression.NewService(e.catalog, e.store.ProgressRepo(), e.log)
}

func (e *env) manager() *assessment.Manager {
	return assessment.NewManager(e.catalog,
		assessment.WithResultRepo(e.store.ResultRepo()),
		assessment.WithLogger(e.log))
}

// coach returns nil when no LLM provider is configured. Debriefs are
// optional, so a provider error is logged rather than returned.
func (e *env) coach(ctx context.Context) *coach.Coach {
	lc, ok := e.cfg.LLMProvider()
	if !ok {
		e.log.Info("no LLM provider configured; debriefs disabled")
		return nil
	}
	p, err := llm.NewProvider(ctx, lc, e.store.EventRepo(), e.log)
	if err != nil {
		e.log.Warn("LLM provider unavailable", zap.String("provider", lc.Provider), zap.Error(err))
		return nil
	}
	cc := coach.Config{MaxTokens: e.cfg.Coach.MaxTokens, Temperature: e.cfg.Coach.Temperature}
	return coach.New(p, cc, lc.Timeout, e.log)
}
