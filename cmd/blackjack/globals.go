package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/persistence"
)

// Globals are flags shared by every command.
type Globals struct {
	Config  string `short:"c" default:"blackjack.hcl" help:"Path to the HCL config file" type:"path"`
	EnvFile string `default:".env" help:"Dotenv file loaded before the config" type:"path"`
	Debug   bool   `help:"Enable debug logging"`
}

// loadConfig reads the dotenv file, then the HCL config with environment
// overrides applied on top.
func (g *Globals) loadConfig() (*config.Config, error) {
	if g.EnvFile != "" {
		if err := godotenv.Load(g.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", g.EnvFile, err)
		}
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Debug {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the application logger. When a log file is configured
// output goes there instead of w; the returned closer releases it.
func newLogger(cfg config.Logging, w io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging level: %w", err)
	}

	closer := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return logger, closer, nil
}

// openGateway opens the configured store behind a debounced gateway. The
// returned cleanup flushes pending saves before closing the store.
func openGateway(ctx context.Context, cfg *config.Config, logger *log.Logger) (*persistence.Gateway, func(), error) {
	store, err := persistence.OpenStore(ctx, cfg.Persistence.StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Persistence.Backend, err)
	}

	gateway := persistence.NewGateway(store, logger,
		persistence.WithNamespace(cfg.Persistence.Namespace),
		persistence.WithDebounce(cfg.Persistence.Debounce),
		persistence.WithInitialBalance(cfg.Rules.InitialBalance),
	)

	cleanup := func() {
		if err := gateway.Close(); err != nil {
			logger.Error("Failed to flush saves", "error", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}
	return gateway, cleanup, nil
}
