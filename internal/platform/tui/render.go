package tui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/profile"
)

const cardWidth = 24

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
	targetStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)
	menuActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	menuDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Strikethrough(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(cardWidth).
			Padding(0, 1)
	cardCursorStyle  = cardStyle.BorderForeground(lipgloss.Color("229"))
	cardCorrectStyle = cardStyle.BorderForeground(lipgloss.Color("10")).Foreground(lipgloss.Color("10"))
	cardWrongStyle   = cardStyle.BorderForeground(lipgloss.Color("9")).Foreground(lipgloss.Color("9"))
	cardMarkedStyle  = cardStyle.BorderForeground(lipgloss.Color("1")).Foreground(lipgloss.Color("240"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(1, 4).
			Align(lipgloss.Center)
)

// place centers content in the terminal, or returns it unchanged when the
// size is not known yet.
func (m Model) place(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) helpView() string {
	if m.view == viewMenu {
		return subtleStyle.Render(m.help.View(menuKeys{m.keys}))
	}
	return subtleStyle.Render(m.help.View(m.keys))
}

func (m Model) renderLoading() string {
	return m.place(fmt.Sprintf("%s Loading profiles...", m.spinner.View()))
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Could not load profiles"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Width(60).Render(m.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(subtleStyle.Render("r: retry  |  q: quit"))
	return m.place(b.String())
}

func (m Model) renderMenu() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("T H E   N A M E   G A M E"))
	b.WriteString("\n\n")
	if m.username != "" {
		b.WriteString(subtleStyle.Render("Hi, " + m.username))
		b.WriteString("\n\n")
	}
	b.WriteString("Match the name to the right face.\n\n")

	enabled := m.menuEnabled()
	for i, mode := range menuModes {
		line := fmt.Sprintf("%s  %s", mode, modeBlurb(mode))
		switch {
		case !enabled:
			b.WriteString("  " + menuDisabledStyle.Render(line))
		case i == m.menuCursor:
			b.WriteString(menuActiveStyle.Render("> " + line))
		default:
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%d profiles loaded", len(m.profiles))))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.helpView())

	return m.place(b.String())
}

func modeBlurb(mode game.Mode) string {
	switch mode {
	case game.ModePractice:
		return fmt.Sprintf("get %d right, one miss ends it", game.PracticeWinScore)
	case game.ModeTimed:
		return fmt.Sprintf("as many as you can in %d seconds", int(game.TimedDuration.Seconds()))
	default:
		return ""
	}
}

func (m Model) renderGame() string {
	st := m.state
	var b strings.Builder

	// Header: mode, score, progress
	var status string
	var percent float64
	switch st.Mode {
	case game.ModePractice:
		status = fmt.Sprintf("Practice  Score: %d/%d", st.Score, game.PracticeWinScore)
		percent = float64(st.Score) / float64(game.PracticeWinScore)
	case game.ModeTimed:
		status = fmt.Sprintf("Timed  Score: %d  Time: %ds", st.Score, st.TimeRemaining)
		percent = float64(st.TimeRemaining) / game.TimedDuration.Seconds()
	}
	b.WriteString(titleStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n\n")

	b.WriteString("Who is ")
	b.WriteString(targetStyle.Render(st.Round.Target.FullName()))
	b.WriteString(" ?\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	b.WriteString(m.resultLine())
	b.WriteString("\n\n")
	b.WriteString(m.helpView())

	return m.place(b.String())
}

func (m Model) renderGrid() string {
	candidates := m.state.Round.Candidates
	rows := make([]string, 0, gridRows)
	for r := 0; r < gridRows; r++ {
		cards := make([]string, 0, gridCols)
		for c := 0; c < gridCols; c++ {
			i := r*gridCols + c
			if i >= len(candidates) {
				break
			}
			cards = append(cards, m.renderCard(i, candidates[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderCard(i int, p profile.Profile) string {
	st := m.state
	style := cardStyle
	switch {
	case st.Round.ShowResult && st.IsSelected(p.ID) && st.Round.IsCorrect:
		style = cardCorrectStyle
	case st.Round.ShowResult && st.IsWrong(p.ID) && st.IsSelected(p.ID):
		style = cardWrongStyle
	case st.IsWrong(p.ID):
		style = cardMarkedStyle
	case i == m.cursor:
		style = cardCursorStyle
	}

	lines := []string{
		fmt.Sprintf("[%d] %s", i+1, photoLabel(p)),
		truncate(p.JobTitle, cardWidth-2),
		subtleStyle.Render(truncate(p.Headshot.URL, cardWidth-2)),
	}
	if st.Round.ShowResult {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(truncate(p.FullName(), cardWidth-2)))
	} else {
		lines = append(lines, "")
	}
	return style.Render(strings.Join(lines, "\n"))
}

// photoLabel describes the headshot without revealing the name.
func photoLabel(p profile.Profile) string {
	if p.Headshot.URL == "" {
		return "photo"
	}
	return truncate(path.Base(p.Headshot.URL), cardWidth-6)
}

func (m Model) resultLine() string {
	st := m.state
	if !st.Round.ShowResult {
		return subtleStyle.Render("Pick the matching photo")
	}
	if st.Round.IsCorrect {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("Correct!")
	}
	if st.Mode == game.ModeTimed {
		return errorStyle.Render("Wrong, try again")
	}
	return errorStyle.Render("Wrong! That was not " + st.Round.Target.FullName())
}

func (m Model) renderGameOver() string {
	over := m.state.GameOver
	var b strings.Builder

	title := "Game Over"
	if over.Won {
		title = "You Win!"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch over.Mode {
	case game.ModePractice:
		b.WriteString(fmt.Sprintf("Score: %d/%d\n", over.Score, game.PracticeWinScore))
	case game.ModeTimed:
		b.WriteString(fmt.Sprintf("Score: %d\n", over.Score))
		b.WriteString(fmt.Sprintf("Accuracy: %.0f%%\n", over.Accuracy))
		b.WriteString(fmt.Sprintf("Avg time per guess: %.1fs\n", m.state.AverageTimePerGuess()))
	}
	b.WriteString(fmt.Sprintf("Rounds survived: %d\n", over.RoundsSurvived))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("enter: back to menu"))

	return m.place(dialogStyle.Render(b.String()))
}

// truncate shortens s to n runes, marking the cut with a dot.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "."
}
