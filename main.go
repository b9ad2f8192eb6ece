package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/msomdec/studytrack/internal/catalog"
	"github.com/msomdec/studytrack/internal/config"
	"github.com/msomdec/studytrack/internal/domain"
	"github.com/msomdec/studytrack/internal/repository/memory"
	"github.com/msomdec/studytrack/internal/repository/sqlite"
	"github.com/msomdec/studytrack/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, time.Now).RunContext(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// env holds everything a command needs. It is populated by open before any
// command runs.
type env struct {
	clock   service.Clock
	cfg     *config.Config
	modules []domain.Module
	closeFn func() error

	progress    *service.ProgressService
	streak      *service.StreakService
	performance *service.PerformanceService
	goals       *service.GoalService
	activity    *service.ActivityService
	insights    *service.InsightService
	settings    *service.SettingsService
}

func newApp(out io.Writer, clock service.Clock) *cli.App {
	e := &env{clock: clock}
	return &cli.App{
		Name:   "studytrack",
		Usage:  "track progress, streaks and goals through a video course",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a studytrack.yaml config file"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (overrides database_path)"},
			&cli.StringFlag{Name: "catalog", Usage: "course catalog YAML (overrides catalog_path)"},
			&cli.BoolFlag{Name: "ephemeral", Usage: "keep state in memory only"},
		},
		Before:   e.open,
		After:    e.close,
		Commands: e.commands(),
	}
}

func (e *env) open(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("db") {
		cfg.DatabasePath = c.String("db")
	}
	if c.IsSet("catalog") {
		cfg.CatalogPath = c.String("catalog")
	}
	if c.Bool("ephemeral") {
		cfg.Ephemeral = true
	}
	e.cfg = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	modules, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	e.modules = modules

	var store domain.Store
	if cfg.Ephemeral {
		store = memory.New()
		e.closeFn = func() error { return nil }
	} else {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		e.closeFn = db.Close
		if err := db.Migrate(c.Context); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Debug("database ready", "path", cfg.DatabasePath)
		store = db.Store()
	}

	e.wire(store)
	return e.activity.InitializeTracking(c.Context, e.modules)
}

func (e *env) wire(store domain.Store) {
	e.progress = service.NewProgressService(store, e.clock)
	e.streak = service.NewStreakService(store, e.clock)
	e.performance = service.NewPerformanceService(store, e.progress, e.clock)
	e.goals = service.NewGoalService(store, e.progress, e.clock)
	e.activity = service.NewActivityService(e.progress, e.streak, e.performance, e.clock)
	e.insights = service.NewInsightService(e.progress, e.streak, e.goals, e.clock)
	e.settings = service.NewSettingsService(store, e.clock)
}

func (e *env) close(*cli.Context) error {
	if e.closeFn == nil {
		return nil
	}
	return e.closeFn()
}
