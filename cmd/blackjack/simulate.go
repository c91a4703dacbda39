package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
	"github.com/lox/blackjack/internal/statistics"
)

type SimulateCmd struct {
	Rounds  int   `short:"n" default:"100000" help:"Number of rounds to simulate"`
	Workers int   `short:"w" default:"0" help:"Parallel workers (0 for GOMAXPROCS)"`
	Bet     int   `default:"0" help:"Flat bet per round (0 for the table minimum)"`
	Seed    int64 `default:"0" help:"RNG seed (0 for random)"`
	JSON    bool  `help:"Log progress as JSON"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	out := shared.WithRules(shared.NewLogger(os.Stderr, shared.LogOptions{
		Debug:     g.Debug,
		JSON:      c.JSON,
		Component: "simulate",
	}), cfg.Rules)
	ctx := shared.SetupSignalHandler(log.Default())

	if c.Seed == 0 {
		c.Seed = randutil.Seed()
	}

	engineLevel := log.WarnLevel
	if g.Debug {
		engineLevel = log.DebugLevel
	}
	engineLogger := log.NewWithOptions(os.Stderr, log.Options{Level: engineLevel})

	startTime := time.Now()
	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Workers: c.Workers,
		Bet:     c.Bet,
		Seed:    c.Seed,
		Rules:   cfg.Rules,
		Logger:  engineLogger,
		OnProgress: func(completed, total int) {
			if completed%10000 != 0 {
				return
			}
			elapsed := time.Since(startTime)
			out.Info().
				Int("completed", completed).
				Int("total", total).
				Float64("rounds_per_sec", float64(completed)/elapsed.Seconds()).
				Msg("Simulation progress")
		},
	})

	out.Info().
		Int("rounds", c.Rounds).
		Int64("seed", c.Seed).
		Msg("Starting simulation")

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	printResults(stats, time.Since(startTime))
	return nil
}

func printResults(stats *statistics.Statistics, duration time.Duration) {
	low, high := stats.ConfidenceInterval95()

	fmt.Printf("\n=== SIMULATION RESULTS ===\n")
	fmt.Printf("Rounds: %d (%d hands) in %s\n", stats.Rounds, stats.Hands, duration.Round(time.Millisecond))
	fmt.Printf("Performance: %.0f rounds/sec\n", float64(stats.Rounds)/duration.Seconds())
	fmt.Printf("Result: %+.4f units/round ± %.4f SE\n", stats.Mean(), stats.StdError())
	fmt.Printf("95%% CI: [%+.4f, %+.4f] units/round\n", low, high)
	fmt.Printf("Std dev: %.4f, median: %+.2f\n", stats.StdDev(), stats.Median())
	fmt.Printf("House edge: %.3f%% of %d wagered\n", stats.HouseEdge(), stats.TotalWagered)

	fmt.Printf("\nHands: %d won, %d lost, %d pushed (win rate %.1f%%)\n",
		stats.Wins, stats.Losses, stats.Pushes, stats.WinRate())
	fmt.Printf("Blackjacks: %d, doubles: %d, splits: %d, surrenders: %d\n",
		stats.Blackjacks, stats.Doubles, stats.Splits, stats.Surrenders)
}
