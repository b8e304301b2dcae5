package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/profile"
)

type view int

const (
	viewLoading view = iota
	viewError
	viewMenu
	viewRoster
	viewGame
)

// menuModes lists the menu entries in display order.
var menuModes = []game.Mode{game.ModePractice, game.ModeTimed}

// Options configures a Model.
type Options struct {
	Context  context.Context // Cancels profile loads, defaults to Background
	Source   profile.Source
	Engine   *game.Engine
	Username string
	Width    int
	Height   int

	// StartMode starts a session as soon as profiles are loaded.
	StartMode *game.Mode
}

// Model is the Bubble Tea model for one player: loading, menu, roster and
// game screens. Game rules live in the engine; the model only forwards
// input and renders the snapshots the engine publishes.
type Model struct {
	ctx      context.Context
	source   profile.Source
	engine   *game.Engine
	sub      *game.Subscription
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model
	roster   RosterModel

	view       view
	profiles   []profile.Profile
	err        error
	notice     string
	state      game.State
	menuCursor int
	cursor     int
	username   string
	startMode  *game.Mode
	width      int
	height     int
	quitting   bool
}

// NewModel creates a model bound to an engine. The caller owns the engine
// and closes it when the program exits.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	engine := opts.Engine
	if engine == nil {
		engine = game.NewEngine(game.Options{})
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
	)

	m := Model{
		ctx:       ctx,
		source:    opts.Source,
		engine:    engine,
		sub:       engine.Subscribe(16),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		roster:    NewRosterModel(opts.Width, opts.Height),
		view:      viewLoading,
		state:     engine.State(),
		username:  opts.Username,
		startMode: opts.StartMode,
	}
	m.resize(opts.Width, opts.Height)
	return m
}

// Init starts loading profiles and listening to the engine.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadProfilesCmd(m.ctx, m.source),
		waitForState(m.sub),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.view != viewLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProfilesLoadedMsg:
		return m.handleProfiles(msg)

	case StateMsg:
		m.applyState(game.State(msg))
		return m, waitForState(m.sub)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	barWidth := width - 20
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 10 {
		barWidth = 10
	}
	m.progress.Width = barWidth
	m.roster = m.roster.Resize(width, height)
}

// applyState adopts a snapshot unless a newer one was already seen.
func (m *Model) applyState(st game.State) {
	if st.Seq < m.state.Seq {
		return
	}
	m.state = st

	switch {
	case st.Screen == game.ScreenGame:
		m.view = viewGame
	case m.view == viewGame:
		m.view = viewMenu
		m.cursor = 0
	}
}

func (m Model) handleProfiles(msg ProfilesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		m.view = viewError
		return m, nil
	}

	m.err = nil
	m.profiles = msg.Profiles
	m.roster = m.roster.SetProfiles(msg.Profiles)
	m.view = viewMenu
	m.notice = ""

	if !m.menuEnabled() {
		m.notice = fmt.Sprintf("Not enough profiles to play (need %d, have %d)", game.CandidateCount, len(m.profiles))
		return m, nil
	}

	if m.startMode != nil {
		mode := *m.startMode
		m.startMode = nil
		m.startGame(mode)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.view {
	case viewError:
		if key.Matches(msg, m.keys.Retry) {
			return m.reload()
		}

	case viewMenu:
		return m.handleMenuKey(msg)

	case viewRoster:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Roster) {
			m.view = viewMenu
			return m, nil
		}
		var cmd tea.Cmd
		m.roster, cmd = m.roster.Update(msg)
		return m, cmd

	case viewGame:
		return m.handleGameKey(msg)
	}

	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.menuCursor < len(menuModes)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.menuEnabled() {
			m.startGame(menuModes[m.menuCursor])
		}
	case key.Matches(msg, m.keys.Roster):
		if len(m.profiles) > 0 {
			m.view = viewRoster
		}
	case key.Matches(msg, m.keys.Retry):
		return m.reload()
	}
	return m, nil
}

func (m Model) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Game-over dialog: any confirm acknowledges
	if m.state.GameOver != nil {
		if key.Matches(msg, m.keys.Select) || key.Matches(msg, m.keys.Back) {
			m.engine.ResetGame()
			m.applyState(m.engine.State())
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.engine.ResetGame()
		m.applyState(m.engine.State())
	case key.Matches(msg, m.keys.Pick):
		if i, ok := pickIndex(msg); ok {
			m.cursor = i
			m.selectCandidate(i)
		}
	case key.Matches(msg, m.keys.Select):
		m.selectCandidate(m.cursor)
	case key.Matches(msg, m.keys.Left):
		m.cursor = moveCursor(m.cursor, -1, 0)
	case key.Matches(msg, m.keys.Right):
		m.cursor = moveCursor(m.cursor, 1, 0)
	case key.Matches(msg, m.keys.Up):
		m.cursor = moveCursor(m.cursor, 0, -1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = moveCursor(m.cursor, 0, 1)
	}
	return m, nil
}

func (m *Model) startGame(mode game.Mode) {
	if err := m.engine.StartGame(mode, m.profiles); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.cursor = 0
	m.applyState(m.engine.State())
}

func (m *Model) selectCandidate(i int) {
	candidates := m.state.Round.Candidates
	if i < 0 || i >= len(candidates) {
		return
	}
	m.engine.SelectProfile(candidates[i])
	m.applyState(m.engine.State())
}

// reload refetches profiles, bypassing any in-memory cache.
func (m Model) reload() (tea.Model, tea.Cmd) {
	if inv, ok := m.source.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	m.view = viewLoading
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, loadProfilesCmd(m.ctx, m.source))
}

func (m Model) menuEnabled() bool {
	return len(m.profiles) >= game.CandidateCount
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewLoading:
		return m.renderLoading()
	case viewError:
		return m.renderError()
	case viewRoster:
		return m.roster.View()
	case viewGame:
		if m.state.GameOver != nil {
			return m.renderGameOver()
		}
		return m.renderGame()
	default:
		return m.renderMenu()
	}
}

// IsQuitting returns true if user requested to quit.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run starts a local Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	model := NewModel(opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(model.ctx),
	)

	_, err := p.Run()
	return err
}
