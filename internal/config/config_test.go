package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverlaysValues(t *testing.T) {
	path := writeConfig(t, `
rules {
  decks               = 2
  dealer_hits_soft_17 = false
  blackjack_payout    = "6:5"
  min_bet             = 25
  surrender           = false
}

persistence {
  backend  = "sqlite"
  path     = "saves.db"
  debounce = "250ms"
}

server {
  port            = 9090
  allowed_origins = ["http://localhost:3000"]
}

logging {
  level = "debug"
}
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Rules.Decks)
	assert.Equal(t, 0, cfg.Rules.ReshuffleThreshold)
	assert.False(t, cfg.Rules.DealerHitsSoft17)
	assert.Equal(t, 6, cfg.Rules.BlackjackPayNum)
	assert.Equal(t, 5, cfg.Rules.BlackjackPayDen)
	assert.Equal(t, 25, cfg.Rules.MinBet)
	assert.False(t, cfg.Rules.Surrender)
	assert.True(t, cfg.Rules.DoubleAfterSplit, "unset bools keep their default")
	assert.Equal(t, 1000, cfg.Rules.InitialBalance)

	assert.Equal(t, persistence.BackendSQLite, cfg.Persistence.Backend)
	assert.Equal(t, "saves.db", cfg.Persistence.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Persistence.Debounce)
	assert.Equal(t, persistence.DefaultNamespace, cfg.Persistence.Namespace)

	assert.Equal(t, "localhost:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax error", `rules {`},
		{"unknown attribute", `rules { jokers = true }`},
		{"bad payout", `rules { blackjack_payout = "three to two" }`},
		{"bad debounce", `persistence { debounce = "soon" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(map[string]string{
		"BLACKJACK_DECKS":               "8",
		"BLACKJACK_MIN_BET":             "5",
		"BLACKJACK_DEALER_HITS_SOFT_17": "false",
		"BLACKJACK_STORAGE":             "postgres",
		"BLACKJACK_DATABASE_URL":        "postgres://localhost/blackjack",
		"BLACKJACK_SAVE_DEBOUNCE":       "2s",
		"BLACKJACK_PORT":                "9000",
		"BLACKJACK_ALLOWED_ORIGINS":     "https://a.example,https://b.example",
		"BLACKJACK_LOG_LEVEL":           "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Rules.Decks)
	assert.Equal(t, 0, cfg.Rules.ReshuffleThreshold)
	assert.Equal(t, 5, cfg.Rules.MinBet)
	assert.False(t, cfg.Rules.DealerHitsSoft17)
	assert.Equal(t, persistence.BackendPostgres, cfg.Persistence.Backend)
	assert.Equal(t, "postgres://localhost/blackjack", cfg.Persistence.DSN)
	assert.Equal(t, 2*time.Second, cfg.Persistence.Debounce)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "warn", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvLeavesUnsetValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(map[string]string{}))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnvDecksKeepsFileThreshold(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `rules {
  decks               = 2
  reshuffle_threshold = 30
}`))
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv(map[string]string{"BLACKJACK_DECKS": "4"}))
	assert.Equal(t, 4, cfg.Rules.Decks)
	assert.Equal(t, 30, cfg.Rules.ReshuffleThreshold)

	cfg, err = LoadFile(writeConfig(t, `rules { decks = 2 }`))
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv(map[string]string{"BLACKJACK_DECKS": "4"}))
	assert.Equal(t, 0, cfg.Rules.ReshuffleThreshold, "derived from the new deck count")

	cfg = Default()
	require.NoError(t, cfg.ApplyEnv(map[string]string{
		"BLACKJACK_DECKS":               "4",
		"BLACKJACK_RESHUFFLE_THRESHOLD": "40",
	}))
	assert.Equal(t, 40, cfg.Rules.ReshuffleThreshold)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(map[string]string{"BLACKJACK_MIN_BET": "lots"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad rules", func(c *Config) { c.Rules.MinBet = 0 }},
		{"unknown backend", func(c *Config) { c.Persistence.Backend = "redis" }},
		{"file without path", func(c *Config) { c.Persistence.Path = "" }},
		{"postgres without dsn", func(c *Config) { c.Persistence.Backend = persistence.BackendPostgres }},
		{"zero debounce", func(c *Config) { c.Persistence.Debounce = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidateWrapsRuleErrors(t *testing.T) {
	cfg := Default()
	cfg.Rules.Decks = 0
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, game.ErrInvalidRules)
}

func TestParsePayout(t *testing.T) {
	num, den, err := ParsePayout(" 3 : 2 ")
	require.NoError(t, err)
	assert.Equal(t, 3, num)
	assert.Equal(t, 2, den)

	for _, bad := range []string{"", "3", "3:0", "a:b", "-1:2"} {
		_, _, err := ParsePayout(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}
