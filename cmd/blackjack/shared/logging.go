package shared

import (
	"fmt"
	"io"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/rs/zerolog"
)

// LogOptions selects how command output is logged.
type LogOptions struct {
	Debug     bool
	JSON      bool   // structured lines instead of the console format
	Component string // added to every line when set
}

// NewLogger builds a zerolog logger writing to w.
func NewLogger(w io.Writer, opts LogOptions) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	out := w
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return ctx.Logger()
}

// WithRules tags every line with the table rules a run is dealt under.
func WithRules(logger zerolog.Logger, rules game.Rules) zerolog.Logger {
	return logger.With().
		Int("decks", rules.Decks).
		Bool("h17", rules.DealerHitsSoft17).
		Str("blackjack_pays", fmt.Sprintf("%d:%d", rules.BlackjackPayNum, rules.BlackjackPayDen)).
		Bool("das", rules.DoubleAfterSplit).
		Bool("surrender", rules.Surrender).
		Logger()
}
