package tui

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// describe turns an engine event into log lines.
func describe(event game.GameEvent) []string {
	switch ev := event.(type) {
	case game.ShuffleEvent:
		return []string{InfoStyle.Render(fmt.Sprintf("Shoe reshuffled: %d decks, %d cards", ev.Decks, ev.Remaining))}

	case game.GameStartedEvent:
		s := ev.State
		lines := []string{HandInfoStyle.Render(fmt.Sprintf("*** HAND #%d *** bet $%d", s.HandNumber, s.Bet))}
		if len(s.PlayerHands) > 0 {
			h := s.PlayerHands[0]
			lines = append(lines, fmt.Sprintf("You: %s (%s)", formatCards(h.Cards), handValue(h)))
		}
		if len(s.DealerCards) > 0 {
			lines = append(lines, fmt.Sprintf("Dealer shows %s", formatCards(s.DealerCards[:1])))
		}
		return lines

	case game.InsuranceOfferedEvent:
		return []string{WarningStyle.Render(fmt.Sprintf("Dealer shows %s. Insurance costs $%d", ev.UpCard, ev.Cost))}

	case game.InsuranceResolvedEvent:
		var line string
		switch {
		case ev.Taken:
			line = fmt.Sprintf("Insurance taken for $%d", ev.Stake)
		case ev.Accepted:
			line = "Insurance declined: balance too low"
		default:
			line = "Insurance declined"
		}
		lines := []string{line}
		if ev.DealerBlackjack {
			lines = append(lines, ErrorStyle.Render("Dealer has blackjack"))
		} else {
			lines = append(lines, "Dealer does not have blackjack")
		}
		return lines

	case game.PlayerActionEvent:
		verb := map[game.EventType]string{
			game.EventPlayerHit:       "hits",
			game.EventPlayerStand:     "stands",
			game.EventPlayerDouble:    "doubles",
			game.EventPlayerSurrender: "surrenders",
		}[ev.EventType()]
		line := fmt.Sprintf("Hand %d %s", ev.HandIndex+1, verb)
		if ev.Card != nil {
			line += fmt.Sprintf(": %s → %s", formatCards([]deck.Card{*ev.Card}), handValue(ev.Hand))
		} else if ev.Action != strategy.Surrender {
			line += fmt.Sprintf(" on %s", handValue(ev.Hand))
		}
		return []string{line}

	case game.HandBustEvent:
		return []string{ErrorStyle.Render(fmt.Sprintf("Hand %d busts with %d", ev.HandIndex+1, ev.Value))}

	case game.DealerTurnEvent:
		line := fmt.Sprintf("Dealer reveals %s (%d)", formatCards(ev.Cards), ev.Value)
		if ev.Skipped {
			line += ", nothing left to play for"
		}
		return []string{line}

	case game.DealerHitEvent:
		return []string{fmt.Sprintf("Dealer draws %s → %d", formatCards([]deck.Card{ev.Card}), ev.Value)}

	case game.GameOverEvent:
		var lines []string
		for _, r := range ev.Results {
			lines = append(lines, outcomeLine(r))
		}
		if ev.InsuranceNet != 0 {
			lines = append(lines, fmt.Sprintf("Insurance %s", signed(ev.InsuranceNet)))
		}
		lines = append(lines, HandInfoStyle.Render(fmt.Sprintf("Net %s, balance $%d", signed(ev.Net), ev.Balance)))
		return lines

	case game.BalanceEvent:
		if ev.Type == game.EventBalanceDepleted {
			return []string{ErrorStyle.Render(fmt.Sprintf("Balance $%d is below the $%d minimum. Press x to reset", ev.Balance, ev.MinBet))}
		}
		return []string{SuccessStyle.Render(fmt.Sprintf("Bankroll reset to $%d", ev.Balance))}

	case game.TrainingFeedbackEvent:
		eval := ev.Evaluation
		if eval.Optimal {
			return []string{SuccessStyle.Render(fmt.Sprintf("✓ %s is basic strategy", eval.Action))}
		}
		style := WarningStyle
		if eval.Wrong {
			style = ErrorStyle
		}
		return []string{style.Render(fmt.Sprintf("✗ basic strategy says %s. %s", eval.Recommended, eval.Explanation))}
	}
	return nil
}

func outcomeLine(r game.HandResult) string {
	text := fmt.Sprintf("Hand %d: %s (%d) %s", r.HandIndex+1, r.Outcome, r.Value, signed(r.Net))
	switch r.Outcome {
	case game.OutcomeWin, game.OutcomeBlackjack:
		return SuccessStyle.Render(text)
	case game.OutcomePush:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

func signed(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+$%d", n)
	}
	return fmt.Sprintf("-$%d", -n)
}

// formatCards formats cards with colors
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}

	formatted := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			formatted[i] = RedCardStyle.Render(card.String())
		} else {
			formatted[i] = BlackCardStyle.Render(card.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// handValue shows soft totals as "7/17".
func handValue(h game.Hand) string {
	v := h.Value()
	if h.IsSoft() && v <= 21 {
		return fmt.Sprintf("%d/%d", v-10, v)
	}
	return fmt.Sprintf("%d", v)
}

func handStatus(h game.Hand) string {
	if h.Outcome != "" {
		return string(h.Outcome)
	}
	switch h.Status {
	case game.StatusPlaying:
		return ""
	case game.StatusBust:
		return ErrorStyle.Render("bust")
	case game.StatusBlackjack:
		return SuccessStyle.Render("blackjack")
	}
	return string(h.Status)
}
