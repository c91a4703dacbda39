package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
)

type PlayCmd struct {
	User     string `short:"u" default:"player" help:"Account to play as"`
	Training bool   `short:"t" help:"Grade each decision against basic strategy"`
	Seed     *int64 `help:"Seed the shoe for a reproducible session"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to a file when one is set.
	logger, closeLog, err := newLogger(cfg.Logging, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	gateway, cleanup, err := openGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	account := gateway.LoadAccount(ctx, c.User)
	opts := []game.Option{
		game.WithRules(cfg.Rules),
		game.WithUser(c.User),
		game.WithSnapshot(account),
		game.WithSaver(gateway),
		game.WithTraining(c.Training),
	}
	if c.Seed != nil {
		opts = append(opts, game.WithRNG(randutil.New(*c.Seed)))
	}
	engine := game.NewEngine(logger, opts...)

	logger.Info("Session started", "user", engine.UserID(), "balance", engine.Balance())

	p := tea.NewProgram(tui.NewModel(engine, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}

	logger.Info("Session ended", "user", engine.UserID(), "balance", engine.Balance())
	return nil
}
