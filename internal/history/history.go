// Package history keeps a bounded, newest-first record of completed rounds.
package history

import (
	"slices"
	"sync"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/strategy"
)

// DefaultSize is the number of rounds retained when no size is given.
const DefaultSize = 50

// Result is the overall outcome of a round from the player's side.
type Result string

const (
	ResultWin       Result = "win"
	ResultLose      Result = "lose"
	ResultPush      Result = "push"
	ResultSurrender Result = "surrender"
)

// Entry summarises one completed round.
type Entry struct {
	HandNumber  int               `json:"hand_number"`
	RoundID     string            `json:"round_id"`
	Timestamp   time.Time         `json:"timestamp"`
	PlayerHands [][]deck.Card     `json:"player_hands"`
	DealerCards []deck.Card       `json:"dealer_cards"`
	UpCard      deck.Card         `json:"up_card"`
	Actions     []strategy.Action `json:"actions"`
	Result      Result            `json:"result"`
	Bet         int               `json:"bet"`
	NetChange   int               `json:"net_change"`
	Blackjack   bool              `json:"blackjack"`
	// StrategyOptimal is nil when the round was not played in training mode.
	StrategyOptimal *bool `json:"strategy_optimal,omitempty"`
}

// HasAction reports whether the player took action a at any point in the round.
func (e Entry) HasAction(a strategy.Action) bool {
	return slices.Contains(e.Actions, a)
}

// History is a fixed-capacity ring of entries.
type History struct {
	mu      sync.RWMutex
	entries []Entry // newest first
	size    int
}

// New creates a history retaining at most size entries.
func New(size int) *History {
	if size <= 0 {
		size = DefaultSize
	}
	return &History{size: size}
}

// Add records an entry, evicting the oldest once full.
func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = slices.Insert(h.entries, 0, e)
	if len(h.entries) > h.size {
		h.entries = h.entries[:h.size]
	}
}

// Entries returns a copy of the retained entries, newest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.entries)
}

// Latest returns the most recent entry.
func (h *History) Latest() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[0], true
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

func (h *History) Size() int { return h.size }

// Clear drops every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
