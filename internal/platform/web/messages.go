package web

import (
	"github.com/vovakirdan/namegame/internal/game"
)

// ClientMessage is sent by the browser.
type ClientMessage struct {
	Type string `json:"type"`           // "start", "select", "reset"
	Mode string `json:"mode,omitempty"` // start: "practice" or "timed"
	ID   string `json:"id,omitempty"`   // select: candidate profile id
}

// StateMessage mirrors one engine snapshot.
type StateMessage struct {
	Type           string        `json:"type"` // "state"
	Session        string        `json:"session"`
	Seq            uint64        `json:"seq"`
	Screen         string        `json:"screen"` // "menu" or "game"
	Mode           string        `json:"mode"`
	Active         bool          `json:"active"`
	Score          int           `json:"score"`
	TimeRemaining  int           `json:"timeRemaining"`
	TotalGuesses   int           `json:"totalGuesses"`
	CorrectGuesses int           `json:"correctGuesses"`
	Accuracy       float64       `json:"accuracy"`
	Target         string        `json:"target,omitempty"` // Full name only
	Candidates     []CardView    `json:"candidates"`
	ShowResult     bool          `json:"showResult"`
	IsCorrect      bool          `json:"isCorrect"`
	GameOver       *GameOverView `json:"gameOver,omitempty"`
}

// CardView is one candidate photo. The name is only filled in once the
// round's result is shown.
type CardView struct {
	ID          string `json:"id"`
	HeadshotURL string `json:"headshotUrl"`
	Alt         string `json:"alt,omitempty"`
	JobTitle    string `json:"jobTitle,omitempty"`
	Name        string `json:"name,omitempty"`
	Status      string `json:"status,omitempty"` // "correct", "wrong", "marked"
	Selectable  bool   `json:"selectable"`
}

// GameOverView is the end-of-session summary.
type GameOverView struct {
	Mode                string  `json:"mode"`
	Score               int     `json:"score"`
	RoundsSurvived      int     `json:"roundsSurvived"`
	TotalGuesses        int     `json:"totalGuesses"`
	Accuracy            float64 `json:"accuracy"`
	AverageTimePerGuess float64 `json:"averageTimePerGuess,omitempty"`
	Won                 bool    `json:"won"`
}

// ErrorMessage reports a failed client request.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

func newErrorMessage(msg string) ErrorMessage {
	return ErrorMessage{Type: "error", Message: msg}
}

func screenName(s game.Screen) string {
	if s == game.ScreenGame {
		return "game"
	}
	return "menu"
}

func modeName(m game.Mode) string {
	if m == game.ModeTimed {
		return "timed"
	}
	return "practice"
}

func newStateMessage(session string, st game.State) StateMessage {
	msg := StateMessage{
		Type:           "state",
		Session:        session,
		Seq:            st.Seq,
		Screen:         screenName(st.Screen),
		Mode:           modeName(st.Mode),
		Active:         st.Active,
		Score:          st.Score,
		TimeRemaining:  st.TimeRemaining,
		TotalGuesses:   st.TotalGuesses,
		CorrectGuesses: st.CorrectGuesses,
		Accuracy:       st.Accuracy(),
		ShowResult:     st.Round.ShowResult,
		IsCorrect:      st.Round.IsCorrect,
		Candidates:     make([]CardView, 0, len(st.Round.Candidates)),
	}

	if len(st.Round.Candidates) > 0 {
		msg.Target = st.Round.Target.FullName()
	}

	for _, c := range st.Round.Candidates {
		card := CardView{
			ID:          c.ID,
			HeadshotURL: c.Headshot.URL,
			Alt:         c.Headshot.Alt,
			JobTitle:    c.JobTitle,
			Selectable:  st.CanSelect(c.ID),
		}
		switch {
		case st.Round.ShowResult && st.IsSelected(c.ID) && st.Round.IsCorrect:
			card.Status = "correct"
		case st.Round.ShowResult && st.IsSelected(c.ID):
			card.Status = "wrong"
		case st.IsWrong(c.ID):
			card.Status = "marked"
		}
		if st.Round.ShowResult {
			card.Name = c.FullName()
		}
		msg.Candidates = append(msg.Candidates, card)
	}

	if over := st.GameOver; over != nil {
		msg.GameOver = &GameOverView{
			Mode:                modeName(over.Mode),
			Score:               over.Score,
			RoundsSurvived:      over.RoundsSurvived,
			TotalGuesses:        over.TotalGuesses,
			Accuracy:            over.Accuracy,
			AverageTimePerGuess: st.AverageTimePerGuess(),
			Won:                 over.Won,
		}
	}

	return msg
}
