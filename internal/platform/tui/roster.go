package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/namegame/internal/profile"
)

// Roster layout constants
const (
	rosterMinWidth = 50
	nameColWidth   = 24
	titleColWidth  = 28
)

// RosterKeyMap defines the key bindings for the roster.
type RosterKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Back     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RosterKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k RosterKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultRosterKeyMap returns default key bindings.
func DefaultRosterKeyMap() RosterKeyMap {
	return RosterKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "tab"),
			key.WithHelp("esc", "back"),
		),
	}
}

// RosterModel lists the loaded profiles so players can study the names
// before a round.
type RosterModel struct {
	profiles []profile.Profile
	table    table.Model
	help     help.Model
	keys     RosterKeyMap
	width    int
	height   int
}

// NewRosterModel creates an empty roster.
func NewRosterModel(width, height int) RosterModel {
	m := RosterModel{
		keys:   DefaultRosterKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	return m
}

// SetProfiles replaces the listed profiles.
func (m RosterModel) SetProfiles(profiles []profile.Profile) RosterModel {
	m.profiles = profiles
	m.updateTableRows()
	return m
}

// Resize adapts the table to a new terminal size.
func (m RosterModel) Resize(width, height int) RosterModel {
	m.width = width
	m.height = height
	m.help.Width = width
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *RosterModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: nameColWidth},
		{Title: "Job Title", Width: titleColWidth},
	}

	// Give spare width to the job title
	tableWidth := m.width - 8
	if tableWidth > rosterMinWidth {
		extra := tableWidth - (4 + nameColWidth + titleColWidth)
		if extra > 0 {
			columns[2].Width += extra
		}
	}

	height := m.height - 8 // Leave room for header, help, and margins
	if height < 5 {
		height = 5
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows fills the table from the profile list.
func (m *RosterModel) updateTableRows() {
	rows := make([]table.Row, len(m.profiles))
	for i, p := range m.profiles {
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			p.FullName(),
			p.JobTitle,
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Update handles scrolling.
func (m RosterModel) Update(msg tea.Msg) (RosterModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the roster.
func (m RosterModel) View() string {
	var b strings.Builder

	heading := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(heading.Render(fmt.Sprintf("ROSTER - %d people", len(m.profiles))))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.profiles) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No profiles loaded.")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// SelectedProfile returns the highlighted profile.
func (m RosterModel) SelectedProfile() (profile.Profile, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.profiles) {
		return profile.Profile{}, false
	}
	return m.profiles[i], true
}
