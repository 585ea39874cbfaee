package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/config"
	"github.com/cory-johannsen/heartbound/internal/content"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/save"
	"github.com/cory-johannsen/heartbound/internal/game/session"
	"github.com/cory-johannsen/heartbound/internal/observability"
	"github.com/cory-johannsen/heartbound/internal/scripting"
	"github.com/cory-johannsen/heartbound/internal/storage/postgres"
	"github.com/cory-johannsen/heartbound/internal/storage/sqlite"
)

// app holds the collaborators every subcommand needs.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	content *content.Content
	scripts *scripting.Runner
}

// newApp loads configuration, builds the logger, loads the content tree and
// compiles its scripts. contentRoot overrides the configured root when set.
//
// Postcondition: the caller must call close.
func newApp(configPath, contentRoot string) (*app, error) {
	start := time.Now()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if contentRoot != "" {
		cfg.Content.Root = contentRoot
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	c, err := content.Load(cfg.Content.Root)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("loading content from %s: %w", cfg.Content.Root, err)
	}
	roller := dice.NewLoggedRoller(newSource(cfg.Engine.Seed, 0), logger)
	scripts, err := c.NewScriptRunner(cfg.Engine.ScriptInstructionLimit, roller, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("loading scripts: %w", err)
	}
	logger.Info("content loaded",
		zap.String("root", cfg.Content.Root),
		zap.Int("characters", c.Characters.Len()),
		zap.Int("locations", c.Map.Len()),
		zap.Int("events", c.Events.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &app{cfg: cfg, logger: logger, content: c, scripts: scripts}, nil
}

func (a *app) close() {
	a.scripts.Close()
	_ = a.logger.Sync()
}

// newSource returns a seeded source offset by stream, or crypto randomness
// when seed is zero.
func newSource(seed uint64, stream uint64) dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(seed + stream)
}

// sessionOptions maps the engine config onto session options.
func (a *app) sessionOptions(src dice.Source) session.Options {
	return session.Options{
		Strict:    a.cfg.Engine.Strict,
		MaxRounds: a.cfg.Engine.MaxRounds,
		PartySize: a.cfg.Engine.PartySize,
		Source:    src,
		Scripts:   a.scripts,
		Logger:    a.logger,
	}
}

// openStore opens the configured snapshot store.
//
// Postcondition: the returned release func must be called once the store is no longer used.
func (a *app) openStore(ctx context.Context) (save.Store, func(), error) {
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres:
		st, err := postgres.Open(ctx, a.cfg.Database, postgres.DefaultPingTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.logger.Info("database connected", zap.String("host", a.cfg.Database.Host))
		return st, st.Close, nil
	case config.DriverSQLite:
		st, err := sqlite.Open(a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Info("sqlite store opened", zap.String("path", a.cfg.Storage.SQLitePath))
		return st, func() { _ = st.Close() }, nil
	default:
		a.logger.Warn("snapshots are kept in memory and lost on exit")
		return save.NewMemoryStore(), func() {}, nil
	}
}
