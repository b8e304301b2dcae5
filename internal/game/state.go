package game

import (
	"sort"
	"time"

	"github.com/vovakirdan/namegame/internal/profile"
)

// Fixed game rules.
const (
	CandidateCount   = 6
	PracticeWinScore = 5
	TimedDuration    = 60 * time.Second

	TickInterval      = time.Second
	AdvanceDelay      = time.Second
	PracticeWinDelay  = time.Second
	RetryDelay        = 1500 * time.Millisecond
	PracticeLossDelay = 2 * time.Second
)

// timedSeconds is TimedDuration in whole ticks.
var timedSeconds = int(TimedDuration / TickInterval)

// Mode selects the rule set for a session.
type Mode int

const (
	ModePractice Mode = iota // Untimed, 5 correct wins, one mistake loses
	ModeTimed                // 60 second clock, mistakes only cost time
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModePractice:
		return "Practice"
	case ModeTimed:
		return "Timed"
	default:
		return "Unknown"
	}
}

// ParseMode maps "practice"/"timed" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "practice", "Practice":
		return ModePractice, true
	case "timed", "Timed":
		return ModeTimed, true
	default:
		return ModePractice, false
	}
}

// Screen is the screen the presentation should show.
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenGame
)

// String returns a human-readable name for the screen.
func (s Screen) String() string {
	switch s {
	case ScreenMenu:
		return "Menu"
	case ScreenGame:
		return "Game"
	default:
		return "Unknown"
	}
}

// GameOver is the one-shot signal raised by EndGame. It stays on the state
// until the presentation acknowledges it with ResetGame.
type GameOver struct {
	Mode           Mode
	Score          int
	RoundsSurvived int
	TotalGuesses   int
	Accuracy       float64
	Won            bool // Practice only: reached PracticeWinScore
}

// State is an immutable snapshot of a session. The engine publishes a new
// value on every transition.
type State struct {
	Seq            uint64 // Increases with every published transition
	Screen         Screen
	Mode           Mode
	Active         bool
	Score          int
	TimeRemaining  int // Seconds, timed mode
	TotalGuesses   int
	CorrectGuesses int
	Round          Round
	GameOver       *GameOver
}

func idleState() State {
	return State{
		Screen:        ScreenMenu,
		TimeRemaining: timedSeconds,
		Round:         Round{WrongGuessIDs: map[string]struct{}{}},
	}
}

// Accuracy returns the percentage of correct guesses, 0 when nothing was
// guessed yet.
func (s State) Accuracy() float64 {
	if s.TotalGuesses == 0 {
		return 0
	}
	return float64(s.CorrectGuesses) / float64(s.TotalGuesses) * 100
}

// AverageTimePerGuess returns elapsed timed-mode seconds per guess.
func (s State) AverageTimePerGuess() float64 {
	if s.TotalGuesses == 0 || s.Mode != ModeTimed {
		return 0
	}
	elapsed := timedSeconds - s.TimeRemaining
	return float64(elapsed) / float64(s.TotalGuesses)
}

// IsWrong reports whether the candidate must be shown as a wrong pick:
// either marked wrong earlier in the round, or the currently revealed
// incorrect selection.
func (s State) IsWrong(id string) bool {
	if _, ok := s.Round.WrongGuessIDs[id]; ok {
		return true
	}
	return s.Round.ShowResult &&
		s.Round.Selected != nil &&
		s.Round.Selected.ID == id &&
		id != s.Round.Target.ID
}

// IsSelected reports whether id is the current selection.
func (s State) IsSelected(id string) bool {
	return s.Round.Selected != nil && s.Round.Selected.ID == id
}

// CanSelect reports whether a SelectProfile call for id would be accepted.
func (s State) CanSelect(id string) bool {
	if !s.Active || s.Round.ShowResult || s.IsSelected(id) {
		return false
	}
	if _, wrong := s.Round.WrongGuessIDs[id]; wrong {
		return false
	}
	return s.Round.HasCandidate(id)
}

// Candidate looks up a candidate of the current round by id.
func (s State) Candidate(id string) (profile.Profile, bool) {
	for _, c := range s.Round.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return profile.Profile{}, false
}

// WrongGuesses returns the wrong-guess ids in sorted order.
func (s State) WrongGuesses() []string {
	ids := make([]string, 0, len(s.Round.WrongGuessIDs))
	for id := range s.Round.WrongGuessIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s State) clone() State {
	out := s
	out.Round = s.Round.clone()
	if s.GameOver != nil {
		over := *s.GameOver
		out.GameOver = &over
	}
	return out
}
