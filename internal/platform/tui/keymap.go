package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/namegame/internal/game"
)

// KeyMap defines the key bindings for every screen.
// This centralizes key bindings and makes them testable.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Pick   key.Binding // 1-6, a candidate by position
	Back   key.Binding
	Roster key.Binding
	Retry  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("down/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h", "a"),
			key.WithHelp("left/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "d"),
			key.WithHelp("right/l", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Pick: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "pick photo"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Roster: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "roster"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pick, k.Select, k.Back, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Pick, k.Select, k.Back},
		{k.Roster, k.Retry, k.Help, k.Quit},
	}
}

// menuKeys is the help shown on the menu screen.
type menuKeys struct{ KeyMap }

func (k menuKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Roster, k.Retry, k.Quit}
}

func (k menuKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// pickIndex returns the zero-based candidate index for a digit key.
func pickIndex(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '0'+game.CandidateCount {
		return 0, false
	}
	return int(s[0] - '1'), true
}

// Grid layout of the candidate cards.
const (
	gridCols = 3
	gridRows = game.CandidateCount / gridCols
)

// moveCursor moves a grid cursor, clamping at the edges.
func moveCursor(cursor, dx, dy int) int {
	col := cursor%gridCols + dx
	row := cursor/gridCols + dy
	if col < 0 {
		col = 0
	}
	if col >= gridCols {
		col = gridCols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= gridRows {
		row = gridRows - 1
	}
	return row*gridCols + col
}
