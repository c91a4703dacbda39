package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/persistence"
	"github.com/muesli/termenv"
)

type InspectCmd struct {
	User    string `arg:"" optional:"" default:"player" help:"Account to show"`
	NoColor bool   `help:"Disable colored output"`
}

var (
	inspectTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	inspectLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	inspectBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inspectGain  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	inspectLoss  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (c *InspectCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}

	ctx := context.Background()
	gateway, cleanup, err := openGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, ok := gateway.Load(ctx, c.User)
	if !ok {
		return fmt.Errorf("no saved account for %q", c.User)
	}
	renderSnapshot(os.Stdout, snap)
	return nil
}

func renderSnapshot(w io.Writer, snap persistence.Snapshot) {
	s := snap.Stats
	row := func(label, value string) string {
		return inspectLabel.Render(label) + value + "\n"
	}

	net := fmt.Sprintf("%+d", s.TotalWinnings)
	if s.TotalWinnings >= 0 {
		net = inspectGain.Render(net)
	} else {
		net = inspectLoss.Render(net)
	}

	body := inspectTitle.Render(snap.UserID) + "\n\n" +
		row("Balance", fmt.Sprintf("$%d", snap.Balance)) +
		row("Hands", fmt.Sprintf("%d", snap.HandCounter)) +
		row("Record", fmt.Sprintf("%dW %dL %dP", s.Wins, s.Losses, s.Pushes)) +
		row("Blackjacks", fmt.Sprintf("%d", s.Blackjacks)) +
		row("Wagered", fmt.Sprintf("$%d", s.TotalWagered)) +
		row("Net", net) +
		row("Best balance", fmt.Sprintf("$%d", s.BestBalance)) +
		row("Worst balance", fmt.Sprintf("$%d", s.WorstBalance)) +
		row("Saved", time.UnixMilli(snap.Timestamp).Format(time.RFC1123))

	fmt.Fprintln(w, inspectBox.Render(body))
}
