// Package tui is a terminal front end for a local blackjack session.
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// maxLogEntries bounds the scrollback kept in memory.
const maxLogEntries = 500

// Model is the Bubble Tea model for a blackjack session. It drives the engine
// from Update and narrates engine events into the log pane.
type Model struct {
	engine *game.Engine
	logger *log.Logger

	// UI components
	keys        keyMap
	help        help.Model
	logViewport viewport.Model

	// State
	gameLog   []string
	bet       int
	status    string
	showStats bool
	quitting  bool

	// Dimensions
	width  int
	height int
}

// NewModel creates a model playing on engine and subscribes it to the
// engine's events.
func NewModel(engine *game.Engine, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	m := &Model{
		engine:      engine,
		logger:      logger.WithPrefix("tui"),
		keys:        defaultKeyMap(),
		help:        help.New(),
		logViewport: vp,
		bet:         engine.Rules().MinBet,
	}
	m.clampBet()
	engine.Subscribe(m)
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logger.Debug("Updated dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.handleKey(msg) {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// handleKey applies a game key binding. It reports false for keys the game
// does not use so they can scroll the log instead.
func (m *Model) handleKey(msg tea.KeyMsg) bool {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Deal):
		m.deal()
	case key.Matches(msg, m.keys.BetUp):
		m.adjustBet(1)
	case key.Matches(msg, m.keys.BetDown):
		m.adjustBet(-1)
	case key.Matches(msg, m.keys.Hit):
		m.act(strategy.Hit, m.engine.Hit)
	case key.Matches(msg, m.keys.Stand):
		m.act(strategy.Stand, m.engine.Stand)
	case key.Matches(msg, m.keys.Double):
		m.act(strategy.Double, m.engine.Double)
	case key.Matches(msg, m.keys.Split):
		if m.act(strategy.Split, m.engine.Split) {
			m.AddLogEntry(fmt.Sprintf("Split into %d hands", len(m.engine.State().PlayerHands)))
		}
	case key.Matches(msg, m.keys.Surrender):
		m.act(strategy.Surrender, m.engine.Surrender)
	case key.Matches(msg, m.keys.Insure):
		m.insurance(true)
	case key.Matches(msg, m.keys.Decline):
		m.insurance(false)
	case key.Matches(msg, m.keys.Training):
		m.engine.SetTraining(!m.engine.Training())
		if m.engine.Training() {
			m.status = "Training mode on"
		} else {
			m.status = "Training mode off"
		}
	case key.Matches(msg, m.keys.Reset):
		if m.engine.Phase() != game.PhaseIdle {
			m.status = "Finish the round before resetting"
			return true
		}
		m.engine.ResetBankroll()
		m.bet = m.engine.Rules().MinBet
	case key.Matches(msg, m.keys.Stats):
		m.showStats = !m.showStats
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return false
	}
	return true
}

func (m *Model) deal() {
	if m.engine.Phase() != game.PhaseIdle {
		m.status = "Round in progress"
		return
	}
	rules := m.engine.Rules()
	if m.engine.Balance() < rules.MinBet {
		m.status = fmt.Sprintf("Balance below the $%d minimum, press x to reset", rules.MinBet)
		return
	}
	m.clampBet()
	m.engine.StartGame(m.bet)
}

func (m *Model) adjustBet(direction int) {
	if m.engine.Phase() != game.PhaseIdle {
		m.status = "Bets are locked during a round"
		return
	}
	m.bet += direction * m.engine.Rules().MinBet
	m.clampBet()
}

// clampBet keeps the bet between the table minimum and the balance.
func (m *Model) clampBet() {
	minBet := m.engine.Rules().MinBet
	m.bet = min(m.bet, m.engine.Balance())
	m.bet = max(m.bet, minBet)
}

// act applies action when the current hand allows it.
func (m *Model) act(action strategy.Action, apply func()) bool {
	if !slices.Contains(m.engine.Available(), action) {
		m.status = fmt.Sprintf("Cannot %s now", action)
		return false
	}
	apply()
	return true
}

func (m *Model) insurance(accept bool) {
	if m.engine.Phase() != game.PhaseInsuranceOffer {
		m.status = "No insurance on offer"
		return
	}
	m.engine.RespondToInsurance(accept)
}

// OnEvent narrates engine events into the log.
func (m *Model) OnEvent(event game.GameEvent) {
	for _, line := range describe(event) {
		m.AddLogEntry(line)
	}
	if event.EventType() == game.EventGameOver {
		m.clampBet()
	}
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if len(m.gameLog) > maxLogEntries {
		m.gameLog = slices.Delete(m.gameLog, 0, len(m.gameLog)-maxLogEntries)
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the log entries.
func (m *Model) Log() []string {
	return slices.Clone(m.gameLog)
}

// Bet returns the stake the next deal will use.
func (m *Model) Bet() int {
	return m.bet
}

// Status returns the transient status line.
func (m *Model) Status() string {
	return m.status
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Width(m.width).Render("Blackjack")

	sidebarContent := m.renderSidebar()
	sidebarWidth := max(28, lipgloss.Width(sidebarContent))
	tableWidth := max(1, m.width-sidebarWidth-4)

	tableContent := m.renderTable()
	tableHeight := lipgloss.Height(tableContent)
	table := TablePaneStyle.Width(tableWidth).Height(tableHeight).Render(tableContent)
	sidebar := PaneStyle.Width(sidebarWidth).Height(tableHeight).Render(sidebarContent)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, table, sidebar)

	footer := m.renderFooter()
	logHeight := m.height - lipgloss.Height(header) - lipgloss.Height(topRow) - lipgloss.Height(footer) - 2
	m.logViewport.Width = max(1, m.width-2)
	m.logViewport.Height = max(1, logHeight)
	logPane := PaneStyle.Width(m.logViewport.Width).Height(m.logViewport.Height).Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, topRow, logPane, footer)
}

// renderTable draws the dealer and player hands.
func (m *Model) renderTable() string {
	state := m.engine.State()
	var content strings.Builder

	content.WriteString(InfoStyle.Render("Dealer"))
	content.WriteString("\n")
	switch {
	case len(state.DealerCards) == 0:
		content.WriteString(InfoStyle.Render("-"))
	case state.DealerHidden:
		content.WriteString(fmt.Sprintf("%s %s  (%d)", formatCards(state.DealerCards), HiddenCardStyle.Render("[??]"), state.DealerValue))
	default:
		content.WriteString(fmt.Sprintf("%s  (%d)", formatCards(state.DealerCards), state.DealerValue))
	}
	content.WriteString("\n\n")

	content.WriteString(InfoStyle.Render("Player"))
	content.WriteString("\n")
	if len(state.PlayerHands) == 0 {
		content.WriteString(InfoStyle.Render("-"))
		content.WriteString("\n")
	}
	for i, hand := range state.PlayerHands {
		line := fmt.Sprintf("%s  (%s)  $%d  %s", formatCards(hand.Cards), handValue(hand), hand.Bet, handStatus(hand))
		if state.Phase == game.PhasePlayerTurn && i == state.CurrentHand && len(state.PlayerHands) > 1 {
			line = CurrentHandStyle.Render("▶ ") + line
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(m.renderPrompt(state))
	return content.String()
}

// renderPrompt tells the player what they can do next.
func (m *Model) renderPrompt(state game.State) string {
	switch state.Phase {
	case game.PhaseInsuranceOffer:
		return WarningStyle.Render(fmt.Sprintf("Insurance for $%d? [i]nsure / [n]o", state.Bet/2))
	case game.PhasePlayerTurn:
		labels := make([]string, len(state.Available))
		for i, a := range state.Available {
			labels[i] = "[" + string(a) + "]"
		}
		return ActionsStyle.Render("Actions: " + strings.Join(labels, " "))
	default:
		if m.status == "" {
			return HandInfoStyle.Render(fmt.Sprintf("Bet $%d, enter to deal", m.bet))
		}
		return HandInfoStyle.Render(fmt.Sprintf("Bet $%d", m.bet))
	}
}

// renderSidebar shows bankroll, shoe and session statistics.
func (m *Model) renderSidebar() string {
	var content strings.Builder
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", m.engine.Balance())))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Bet: $%d\n", m.bet))
	content.WriteString(fmt.Sprintf("Shoe: %d/%d\n", m.engine.ShoeRemaining(), m.engine.ShoeTotal()))
	content.WriteString(fmt.Sprintf("Hands: %d\n", m.engine.HandNumber()))
	if m.engine.Training() {
		content.WriteString(SuccessStyle.Render("Training on"))
		content.WriteString("\n")
	}

	if m.showStats {
		adv := m.engine.AdvancedStats()
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("Session"))
		content.WriteString("\n")
		content.WriteString(fmt.Sprintf("W/L: %d/%d\n", adv.Wins, adv.Losses))
		content.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", adv.WinRate))
		content.WriteString(fmt.Sprintf("ROI: %.1f%%\n", adv.NetROI))
		content.WriteString(fmt.Sprintf("Best/worst: $%d/$%d\n", adv.BestBalance, adv.WorstBalance))
		content.WriteString(fmt.Sprintf("Streak: %s %d\n", adv.CurrentStreak.Kind, adv.CurrentStreak.Count))
		if adv.StrategyCompliance != nil {
			content.WriteString(fmt.Sprintf("Strategy: %.1f%%\n", *adv.StrategyCompliance))
		}
	}
	return strings.TrimRight(content.String(), "\n")
}

func (m *Model) renderFooter() string {
	var content strings.Builder
	if m.status != "" {
		content.WriteString(ErrorStyle.Render(m.status))
		content.WriteString("\n")
	}
	content.WriteString(m.help.View(m.keys))
	return content.String()
}
