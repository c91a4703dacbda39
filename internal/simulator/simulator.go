// Package simulator plays large numbers of basic-strategy rounds against the
// engine to measure the house edge of a rule set.
package simulator

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// bankroll funds each worker so a simulation never runs dry.
const bankroll = math.MaxInt32

// progressEvery is how many rounds pass between progress callbacks.
const progressEvery = 1000

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Workers int
	Bet     int
	Seed    int64
	Rules   game.Rules
	Logger  *log.Logger

	// OnProgress is called from worker goroutines as rounds complete.
	OnProgress func(completed, total int)
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Workers > config.Rounds && config.Rounds > 0 {
		config.Workers = config.Rounds
	}
	if config.Rules == (game.Rules{}) {
		config.Rules = game.DefaultRules()
	}
	if config.Bet <= 0 {
		config.Bet = config.Rules.MinBet
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns results. Worker w deals from a shoe
// seeded with Seed+w, so a run is reproducible for a fixed worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	cfg := s.config
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}

	perWorker := cfg.Rounds / cfg.Workers
	remainder := cfg.Rounds % cfg.Workers
	results := make([]*statistics.Statistics, cfg.Workers)
	var completed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := range cfg.Workers {
		rounds := perWorker
		if w < remainder {
			rounds++ // Distribute remainder rounds
		}
		g.Go(func() error {
			stats, err := s.runWorker(ctx, w, rounds, &completed)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, r := range results {
		total.Merge(r)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return total, nil
}

func (s *Simulator) runWorker(ctx context.Context, worker, rounds int, completed *atomic.Int64) (*statistics.Statistics, error) {
	cfg := s.config
	n := 0
	e := game.NewEngine(cfg.Logger,
		game.WithRules(cfg.Rules),
		game.WithRNG(randutil.New(cfg.Seed+int64(worker))),
		game.WithBalance(bankroll),
		game.WithUser(fmt.Sprintf("sim-%d", worker)),
		game.WithRoundIDs(func() string {
			n++
			return fmt.Sprintf("sim-%d-%d", worker, n)
		}),
	)

	stats := &statistics.Statistics{}
	for i := range rounds {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result, err := PlayRound(e, cfg.Bet)
		if err != nil {
			return nil, err
		}
		stats.Add(result)

		if done := completed.Add(1); cfg.OnProgress != nil && done%progressEvery == 0 {
			cfg.OnProgress(int(done), cfg.Rounds)
		}
	}
	cfg.Logger.Debug("Worker finished", "worker", worker, "rounds", rounds, "net", stats.TotalNet)
	return stats, nil
}

// RunSimulation is a convenience function for running simulations
func RunSimulation(ctx context.Context, rounds int, seed int64, logger *log.Logger) (*statistics.Statistics, error) {
	return New(Config{Rounds: rounds, Seed: seed, Logger: logger}).Run(ctx)
}
