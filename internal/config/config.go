// Package config loads blackjack settings from an HCL file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/persistence"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration.
type Config struct {
	Rules       game.Rules
	Persistence Persistence
	Server      Server
	Logging     Logging

	// thresholdSet records an explicit reshuffle threshold, which a later
	// deck count override must keep.
	thresholdSet bool
}

type Persistence struct {
	Backend   string
	Path      string
	DSN       string
	Namespace string
	Debounce  time.Duration
}

// StoreOptions converts the block for persistence.OpenStore.
func (p Persistence) StoreOptions() persistence.StoreOptions {
	return persistence.StoreOptions{Backend: p.Backend, Path: p.Path, DSN: p.DSN}
}

type Server struct {
	Address        string
	Port           int
	AllowedOrigins []string
}

// Addr is the listen address.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

type Logging struct {
	Level string
	File  string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rules: game.DefaultRules(),
		Persistence: Persistence{
			Backend:   persistence.BackendFile,
			Path:      "blackjack-saves",
			Namespace: persistence.DefaultNamespace,
			Debounce:  persistence.DefaultDebounce,
		},
		Server: Server{
			Address: "localhost",
			Port:    8080,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

type fileConfig struct {
	Rules       *rulesBlock       `hcl:"rules,block"`
	Persistence *persistenceBlock `hcl:"persistence,block"`
	Server      *serverBlock      `hcl:"server,block"`
	Logging     *loggingBlock     `hcl:"logging,block"`
}

type rulesBlock struct {
	Decks              int    `hcl:"decks,optional"`
	ReshuffleThreshold int    `hcl:"reshuffle_threshold,optional"`
	DealerHitsSoft17   *bool  `hcl:"dealer_hits_soft_17,optional"`
	BlackjackPayout    string `hcl:"blackjack_payout,optional"`
	InsurancePayout    int    `hcl:"insurance_payout,optional"`
	MinBet             int    `hcl:"min_bet,optional"`
	MaxHands           int    `hcl:"max_hands,optional"`
	DoubleAfterSplit   *bool  `hcl:"double_after_split,optional"`
	Surrender          *bool  `hcl:"surrender,optional"`
	InitialBalance     int    `hcl:"initial_balance,optional"`
	HistorySize        int    `hcl:"history_size,optional"`
}

type persistenceBlock struct {
	Backend   string `hcl:"backend,optional"`
	Path      string `hcl:"path,optional"`
	DSN       string `hcl:"dsn,optional"`
	Namespace string `hcl:"namespace,optional"`
	Debounce  string `hcl:"debounce,optional"`
}

type serverBlock struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

type loggingBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// Load reads filename, applies BLACKJACK_* environment overrides and
// validates the result. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads an HCL file over the defaults without consulting the
// environment.
func LoadFile(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if err := cfg.merge(fc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge overlays every value set in the file; zero values keep the default.
func (c *Config) merge(fc fileConfig) error {
	if r := fc.Rules; r != nil {
		setInt(&c.Rules.Decks, r.Decks)
		setInt(&c.Rules.InsurancePayout, r.InsurancePayout)
		setInt(&c.Rules.MinBet, r.MinBet)
		setInt(&c.Rules.MaxHands, r.MaxHands)
		setInt(&c.Rules.InitialBalance, r.InitialBalance)
		setInt(&c.Rules.HistorySize, r.HistorySize)
		setBool(&c.Rules.DealerHitsSoft17, r.DealerHitsSoft17)
		setBool(&c.Rules.DoubleAfterSplit, r.DoubleAfterSplit)
		setBool(&c.Rules.Surrender, r.Surrender)

		switch {
		case r.ReshuffleThreshold > 0:
			c.Rules.ReshuffleThreshold = r.ReshuffleThreshold
			c.thresholdSet = true
		case r.Decks > 0:
			c.Rules.ReshuffleThreshold = 0 // derive from the deck count
		}
		if r.BlackjackPayout != "" {
			num, den, err := ParsePayout(r.BlackjackPayout)
			if err != nil {
				return err
			}
			c.Rules.BlackjackPayNum, c.Rules.BlackjackPayDen = num, den
		}
	}

	if p := fc.Persistence; p != nil {
		setString(&c.Persistence.Backend, p.Backend)
		setString(&c.Persistence.Path, p.Path)
		setString(&c.Persistence.DSN, p.DSN)
		setString(&c.Persistence.Namespace, p.Namespace)
		if p.Debounce != "" {
			d, err := time.ParseDuration(p.Debounce)
			if err != nil {
				return fmt.Errorf("%w: persistence.debounce: %v", ErrInvalid, err)
			}
			c.Persistence.Debounce = d
		}
	}

	if s := fc.Server; s != nil {
		setString(&c.Server.Address, s.Address)
		setInt(&c.Server.Port, s.Port)
		if len(s.AllowedOrigins) > 0 {
			c.Server.AllowedOrigins = s.AllowedOrigins
		}
	}

	if l := fc.Logging; l != nil {
		setString(&c.Logging.Level, l.Level)
		setString(&c.Logging.File, l.File)
	}
	return nil
}

// ParsePayout parses a ratio such as "3:2" or "6:5".
func ParsePayout(s string) (num, den int, err error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ":")
	if ok {
		num, err = strconv.Atoi(strings.TrimSpace(a))
		if err == nil {
			den, err = strconv.Atoi(strings.TrimSpace(b))
		}
	}
	if !ok || err != nil || num < 1 || den < 1 {
		return 0, 0, fmt.Errorf("%w: payout %q must look like 3:2", ErrInvalid, s)
	}
	return num, den, nil
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	switch c.Persistence.Backend {
	case persistence.BackendMemory:
	case persistence.BackendFile, persistence.BackendSQLite:
		if c.Persistence.Path == "" {
			return fmt.Errorf("%w: %s backend requires a path", ErrInvalid, c.Persistence.Backend)
		}
	case persistence.BackendPostgres:
		if c.Persistence.DSN == "" {
			return fmt.Errorf("%w: postgres backend requires a dsn", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown persistence backend %q", ErrInvalid, c.Persistence.Backend)
	}
	if c.Persistence.Debounce <= 0 {
		return fmt.Errorf("%w: debounce must be positive", ErrInvalid)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalid, c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
