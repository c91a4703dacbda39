package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envOverrides are the BLACKJACK_* variables. Unset variables leave the
// file or default value alone.
type envOverrides struct {
	Decks              *int           `env:"BLACKJACK_DECKS"`
	ReshuffleThreshold *int           `env:"BLACKJACK_RESHUFFLE_THRESHOLD"`
	MinBet             *int           `env:"BLACKJACK_MIN_BET"`
	InitialBalance     *int           `env:"BLACKJACK_INITIAL_BALANCE"`
	DealerHitsSoft17   *bool          `env:"BLACKJACK_DEALER_HITS_SOFT_17"`
	Surrender          *bool          `env:"BLACKJACK_SURRENDER"`
	Storage            string         `env:"BLACKJACK_STORAGE"`
	StoragePath        string         `env:"BLACKJACK_STORAGE_PATH"`
	DatabaseURL        string         `env:"BLACKJACK_DATABASE_URL"`
	Namespace          string         `env:"BLACKJACK_NAMESPACE"`
	SaveDebounce       *time.Duration `env:"BLACKJACK_SAVE_DEBOUNCE"`
	Address            string         `env:"BLACKJACK_ADDRESS"`
	Port               *int           `env:"BLACKJACK_PORT"`
	AllowedOrigins     []string       `env:"BLACKJACK_ALLOWED_ORIGINS" envSeparator:","`
	LogLevel           string         `env:"BLACKJACK_LOG_LEVEL"`
	LogFile            string         `env:"BLACKJACK_LOG_FILE"`
}

// ApplyEnv overlays environment variables. A nil environ reads the process
// environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	var o envOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Decks != nil {
		c.Rules.Decks = *o.Decks
		if !c.thresholdSet {
			c.Rules.ReshuffleThreshold = 0 // derive from the new deck count
		}
	}
	if o.ReshuffleThreshold != nil {
		c.Rules.ReshuffleThreshold = *o.ReshuffleThreshold
		c.thresholdSet = true
	}
	setIntPtr(&c.Rules.MinBet, o.MinBet)
	setIntPtr(&c.Rules.InitialBalance, o.InitialBalance)
	setBool(&c.Rules.DealerHitsSoft17, o.DealerHitsSoft17)
	setBool(&c.Rules.Surrender, o.Surrender)

	setString(&c.Persistence.Backend, o.Storage)
	setString(&c.Persistence.Path, o.StoragePath)
	setString(&c.Persistence.DSN, o.DatabaseURL)
	setString(&c.Persistence.Namespace, o.Namespace)
	if o.SaveDebounce != nil {
		c.Persistence.Debounce = *o.SaveDebounce
	}

	setString(&c.Server.Address, o.Address)
	setIntPtr(&c.Server.Port, o.Port)
	if len(o.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = o.AllowedOrigins
	}

	setString(&c.Logging.Level, o.LogLevel)
	setString(&c.Logging.File, o.LogFile)
	return nil
}

func setIntPtr(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
