package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Deal      key.Binding
	BetUp     key.Binding
	BetDown   key.Binding
	Hit       key.Binding
	Stand     key.Binding
	Double    key.Binding
	Split     key.Binding
	Surrender key.Binding
	Insure    key.Binding
	Decline   key.Binding
	Training  key.Binding
	Reset     key.Binding
	Stats     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Deal: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "deal"),
		),
		BetUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "raise bet"),
		),
		BetDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "lower bet"),
		),
		Hit: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hit"),
		),
		Stand: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stand"),
		),
		Double: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "double"),
		),
		Split: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "split"),
		),
		Surrender: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "surrender"),
		),
		Insure: key.NewBinding(
			key.WithKeys("i", "y"),
			key.WithHelp("i", "take insurance"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "decline insurance"),
		),
		Training: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "training"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset bankroll"),
		),
		Stats: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "stats"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Deal, k.Hit, k.Stand, k.Double, k.Split, k.Surrender, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Deal, k.BetUp, k.BetDown},
		{k.Hit, k.Stand, k.Double, k.Split, k.Surrender},
		{k.Insure, k.Decline},
		{k.Training, k.Stats, k.Reset, k.Help, k.Quit},
	}
}
