package game

import (
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/namegame/internal/clock"
	"github.com/vovakirdan/namegame/internal/profile"
)

func newTestEngine(t *testing.T) (*Engine, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	e := NewEngine(Options{
		Clock:  clk,
		Seed:   42,
		Logger: log.New(io.Discard),
	})
	t.Cleanup(e.Close)
	return e, clk
}

func startGame(t *testing.T, e *Engine, mode Mode) {
	t.Helper()
	if err := e.StartGame(mode, makePool(20)); err != nil {
		t.Fatalf("StartGame() failed: %v", err)
	}
}

// wrongCandidates returns the current round's candidates minus the target.
func wrongCandidates(st State) []profile.Profile {
	var out []profile.Profile
	for _, c := range st.Round.Candidates {
		if c.ID != st.Round.Target.ID {
			out = append(out, c)
		}
	}
	return out
}

func assertIdle(t *testing.T, st State) {
	t.Helper()
	if st.Active {
		t.Error("Active should be false")
	}
	if st.Screen != ScreenMenu {
		t.Errorf("Screen = %v, expected Menu", st.Screen)
	}
	if len(st.Round.Candidates) != 0 || st.Round.Selected != nil || st.Round.ShowResult || len(st.Round.WrongGuessIDs) != 0 {
		t.Errorf("Round state should be empty: %+v", st.Round)
	}
	if st.Score != 0 || st.TotalGuesses != 0 || st.CorrectGuesses != 0 {
		t.Errorf("Counters should be zero: score=%d total=%d correct=%d", st.Score, st.TotalGuesses, st.CorrectGuesses)
	}
	if st.GameOver != nil {
		t.Error("GameOver should be cleared")
	}
}

func TestNewEngineIsIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	assertIdle(t, e.State())
}

func TestStartGame(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModePractice)

	st := e.State()
	if !st.Active || st.Screen != ScreenGame || st.Mode != ModePractice {
		t.Errorf("unexpected state after start: active=%v screen=%v mode=%v", st.Active, st.Screen, st.Mode)
	}
	if len(st.Round.Candidates) != CandidateCount {
		t.Errorf("expected %d candidates, got %d", CandidateCount, len(st.Round.Candidates))
	}
	if clk.Pending() != 0 {
		t.Errorf("practice mode should not start a ticker, pending=%d", clk.Pending())
	}
}

func TestStartGameInsufficientProfiles(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.StartGame(ModeTimed, makePool(CandidateCount-1))
	if !errors.Is(err, ErrInsufficientProfiles) {
		t.Fatalf("expected ErrInsufficientProfiles, got %v", err)
	}
	assertIdle(t, e.State())
}

func TestPracticeWin(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModePractice)

	for i := 1; i <= PracticeWinScore; i++ {
		st := e.State()
		if !e.SelectProfile(st.Round.Target) {
			t.Fatalf("round %d: correct guess rejected", i)
		}

		st = e.State()
		if st.Score != i {
			t.Fatalf("round %d: score = %d", i, st.Score)
		}
		if !st.Round.ShowResult || !st.Round.IsCorrect {
			t.Fatalf("round %d: result should be visible and correct", i)
		}

		if i < PracticeWinScore {
			clk.Advance(AdvanceDelay)
			if next := e.State(); next.Round.ShowResult || next.Round.Selected != nil {
				t.Fatalf("round %d: next round should clear the selection", i)
			}
		}
	}

	last := e.State()
	clk.Advance(PracticeWinDelay - time.Millisecond)
	if !e.State().Active {
		t.Fatal("game ended before the win delay elapsed")
	}
	clk.Advance(time.Millisecond)

	st := e.State()
	if st.Active {
		t.Fatal("game should have ended")
	}
	if st.GameOver == nil || !st.GameOver.Won || st.GameOver.Score != PracticeWinScore {
		t.Fatalf("expected winning game-over signal, got %+v", st.GameOver)
	}
	if st.Round.Target.ID != last.Round.Target.ID {
		t.Error("no further round should be generated after the win")
	}
	if clk.Pending() != 0 {
		t.Errorf("pending timers after game over: %d", clk.Pending())
	}
}

func TestPracticeLoss(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModePractice)

	for i := 0; i < 2; i++ {
		e.SelectProfile(e.State().Round.Target)
		clk.Advance(AdvanceDelay)
	}

	wrong := wrongCandidates(e.State())[0]
	if !e.SelectProfile(wrong) {
		t.Fatal("wrong guess rejected")
	}

	st := e.State()
	if !st.Round.ShowResult || st.Round.IsCorrect {
		t.Fatal("wrong result should be visible")
	}
	if !st.IsWrong(wrong.ID) {
		t.Error("selected wrong candidate should be shown as wrong")
	}
	if len(st.Round.WrongGuessIDs) != 0 {
		t.Error("practice mode should not track wrong guesses")
	}

	// Locked until the game ends.
	if e.SelectProfile(st.Round.Target) {
		t.Error("guess accepted while result is visible")
	}

	clk.Advance(PracticeLossDelay - time.Millisecond)
	if !e.State().Active {
		t.Fatal("game ended before the loss delay elapsed")
	}
	clk.Advance(time.Millisecond)

	st = e.State()
	if st.Active || st.GameOver == nil {
		t.Fatal("game should have ended after a wrong practice guess")
	}
	if st.GameOver.Won || st.GameOver.Score != 2 {
		t.Errorf("unexpected game-over signal: %+v", st.GameOver)
	}
}

func TestTimedCountdown(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModeTimed)

	if st := e.State(); st.TimeRemaining != 60 {
		t.Fatalf("TimeRemaining = %d, expected 60", st.TimeRemaining)
	}

	for i := 1; i < 60; i++ {
		clk.Advance(TickInterval)
		st := e.State()
		if st.TimeRemaining != 60-i {
			t.Fatalf("tick %d: TimeRemaining = %d", i, st.TimeRemaining)
		}
		if !st.Active {
			t.Fatalf("tick %d: game ended early", i)
		}
	}

	clk.Advance(TickInterval)
	st := e.State()
	if st.TimeRemaining != 0 || st.Active || st.GameOver == nil {
		t.Fatalf("expected game over at 0, got remaining=%d active=%v", st.TimeRemaining, st.Active)
	}

	clk.Advance(10 * TickInterval)
	if e.State().TimeRemaining != 0 {
		t.Error("TimeRemaining went below zero")
	}
	if clk.Pending() != 0 {
		t.Errorf("ticker still scheduled after game over: %d", clk.Pending())
	}
}

func TestTimedRetry(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModeTimed)

	st := e.State()
	wrong := wrongCandidates(st)
	first, second := wrong[0], wrong[1]

	if !e.SelectProfile(first) {
		t.Fatal("first wrong guess rejected")
	}
	st = e.State()
	if _, ok := st.Round.WrongGuessIDs[first.ID]; !ok {
		t.Fatal("wrong guess not recorded")
	}
	if !st.Round.ShowResult {
		t.Fatal("wrong result should be visible")
	}

	// Locked while the indicator shows.
	if e.SelectProfile(second) {
		t.Error("guess accepted while result is visible")
	}

	clk.Advance(RetryDelay)
	st = e.State()
	if st.Round.Selected != nil || st.Round.ShowResult {
		t.Fatal("selection should clear after the retry delay")
	}
	if _, ok := st.Round.WrongGuessIDs[first.ID]; !ok {
		t.Fatal("wrong mark must persist for the round")
	}
	if !st.Active {
		t.Fatal("timed mode must continue after a wrong guess")
	}

	if e.SelectProfile(first) {
		t.Error("already-wrong candidate accepted again")
	}
	if e.State().TotalGuesses != 1 {
		t.Errorf("TotalGuesses = %d, expected 1", e.State().TotalGuesses)
	}

	if !e.SelectProfile(second) {
		t.Fatal("different candidate rejected after retry")
	}
	clk.Advance(RetryDelay)

	st = e.State()
	if len(st.Round.WrongGuessIDs) != 2 {
		t.Errorf("expected 2 wrong marks, got %v", st.WrongGuesses())
	}

	if !e.SelectProfile(st.Round.Target) {
		t.Fatal("correct guess rejected after wrong marks")
	}
	clk.Advance(AdvanceDelay)

	st = e.State()
	if st.Score != 1 || st.CorrectGuesses != 1 || st.TotalGuesses != 3 {
		t.Errorf("score=%d correct=%d total=%d", st.Score, st.CorrectGuesses, st.TotalGuesses)
	}
	if len(st.Round.WrongGuessIDs) != 0 {
		t.Error("wrong marks should clear with the new round")
	}
}

func TestGuessCounting(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModeTimed)

	rng := rand.New(rand.NewSource(99))
	accepted := 0
	for i := 0; i < 500 && e.State().Active; i++ {
		st := e.State()
		c := st.Round.Candidates[rng.Intn(len(st.Round.Candidates))]
		if e.SelectProfile(c) {
			accepted++
		}
		clk.Advance(time.Duration(rng.Intn(800)) * time.Millisecond)
	}

	st := e.State()
	if st.TotalGuesses != accepted {
		t.Errorf("TotalGuesses = %d, accepted calls = %d", st.TotalGuesses, accepted)
	}
	if st.CorrectGuesses > st.TotalGuesses {
		t.Errorf("CorrectGuesses %d > TotalGuesses %d", st.CorrectGuesses, st.TotalGuesses)
	}
	if st.Score != st.CorrectGuesses {
		t.Errorf("Score %d != CorrectGuesses %d", st.Score, st.CorrectGuesses)
	}
}

func TestSelectIgnored(t *testing.T) {
	e, _ := newTestEngine(t)

	if e.SelectProfile(makePool(1)[0]) {
		t.Error("guess accepted while idle")
	}

	startGame(t, e, ModeTimed)
	outsider := profile.Profile{ID: "not-a-candidate", FirstName: "X", LastName: "Y"}
	if e.SelectProfile(outsider) {
		t.Error("non-candidate accepted")
	}
	if e.State().TotalGuesses != 0 {
		t.Error("ignored guesses must not be counted")
	}
}

func TestSelectSameCandidateTwice(t *testing.T) {
	e, _ := newTestEngine(t)
	startGame(t, e, ModeTimed)

	target := e.State().Round.Target
	if !e.SelectProfile(target) {
		t.Fatal("first guess rejected")
	}
	if e.SelectProfile(target) {
		t.Error("repeat guess on selected candidate accepted")
	}
	if e.State().TotalGuesses != 1 {
		t.Errorf("TotalGuesses = %d, expected 1", e.State().TotalGuesses)
	}
}

func TestResetGameIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine, clk *clock.Manual)
	}{
		{"from idle", func(e *Engine, clk *clock.Manual) {}},
		{"mid round", func(e *Engine, clk *clock.Manual) {
			e.StartGame(ModeTimed, makePool(20))
			e.SelectProfile(wrongCandidates(e.State())[0])
		}},
		{"pending practice loss", func(e *Engine, clk *clock.Manual) {
			e.StartGame(ModePractice, makePool(20))
			e.SelectProfile(wrongCandidates(e.State())[0])
		}},
		{"after end game", func(e *Engine, clk *clock.Manual) {
			e.StartGame(ModeTimed, makePool(20))
			e.EndGame()
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, clk := newTestEngine(t)
			tc.setup(e, clk)

			e.ResetGame()
			e.ResetGame()

			st := e.State()
			assertIdle(t, st)
			if clk.Pending() != 0 {
				t.Errorf("pending timers after reset: %d", clk.Pending())
			}

			clk.Advance(2 * time.Minute)
			if after := e.State(); after.Seq != st.Seq {
				t.Errorf("state changed after reset: seq %d -> %d", st.Seq, after.Seq)
			}
		})
	}
}

func TestStaleCallbackDoesNotLeakIntoNewSession(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModePractice)

	e.SelectProfile(wrongCandidates(e.State())[0])
	clk.Advance(time.Second)

	e.ResetGame()
	startGame(t, e, ModePractice)

	clk.Advance(PracticeLossDelay)
	st := e.State()
	if !st.Active || st.GameOver != nil {
		t.Fatal("stale practice-loss callback ended the new session")
	}
}

func TestStartWhileActiveRestarts(t *testing.T) {
	e, clk := newTestEngine(t)
	startGame(t, e, ModeTimed)

	clk.Advance(10 * TickInterval)
	e.SelectProfile(e.State().Round.Target)

	startGame(t, e, ModePractice)
	st := e.State()
	if st.Mode != ModePractice || st.Score != 0 || st.TotalGuesses != 0 || !st.Active {
		t.Errorf("restart did not reset the session: %+v", st)
	}
	if clk.Pending() != 0 {
		t.Errorf("old ticker and transitions should be cancelled, pending=%d", clk.Pending())
	}
}

func TestEndGameIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)

	e.EndGame()
	if e.State().GameOver != nil {
		t.Error("EndGame on idle engine should do nothing")
	}

	startGame(t, e, ModeTimed)
	e.SelectProfile(e.State().Round.Target)
	e.EndGame()
	first := e.State()
	e.EndGame()
	second := e.State()

	if first.Seq != second.Seq {
		t.Error("second EndGame should not publish")
	}
	if second.GameOver == nil || second.GameOver.RoundsSurvived != 1 {
		t.Errorf("unexpected game-over signal: %+v", second.GameOver)
	}
}

func TestMetrics(t *testing.T) {
	var st State
	if st.Accuracy() != 0 {
		t.Errorf("Accuracy() with no guesses = %f, expected 0", st.Accuracy())
	}
	if st.AverageTimePerGuess() != 0 {
		t.Errorf("AverageTimePerGuess() with no guesses = %f, expected 0", st.AverageTimePerGuess())
	}

	st = State{Mode: ModeTimed, TotalGuesses: 4, CorrectGuesses: 3, TimeRemaining: 40}
	if st.Accuracy() != 75 {
		t.Errorf("Accuracy() = %f, expected 75", st.Accuracy())
	}
	if st.AverageTimePerGuess() != 5 {
		t.Errorf("AverageTimePerGuess() = %f, expected 5", st.AverageTimePerGuess())
	}

	st.Mode = ModePractice
	if st.AverageTimePerGuess() != 0 {
		t.Error("AverageTimePerGuess() is only defined for timed mode")
	}
}

func TestStateSnapshotsAreIsolated(t *testing.T) {
	e, _ := newTestEngine(t)
	startGame(t, e, ModeTimed)

	snap := e.State()
	snap.Round.WrongGuessIDs["tampered"] = struct{}{}
	snap.Round.Candidates[0].ID = "tampered"

	st := e.State()
	if _, ok := st.Round.WrongGuessIDs["tampered"]; ok {
		t.Error("mutating a snapshot leaked into the engine")
	}
	if st.Round.Candidates[0].ID == "tampered" {
		t.Error("mutating snapshot candidates leaked into the engine")
	}
}

func TestSubscription(t *testing.T) {
	e, _ := newTestEngine(t)

	sub := e.Subscribe(8)
	first := <-sub.States()
	if first.Screen != ScreenMenu {
		t.Errorf("first snapshot should be the current idle state, got %v", first.Screen)
	}

	startGame(t, e, ModePractice)
	got := <-sub.States()
	if got.Screen != ScreenGame || !got.Active {
		t.Errorf("expected game state, got screen=%v active=%v", got.Screen, got.Active)
	}

	sub.Close()
	sub.Close()
	if _, ok := <-sub.States(); ok {
		t.Error("States() should be closed after Close")
	}

	// Engine keeps working without subscribers.
	e.ResetGame()
}

func TestSubscriptionDropsOldest(t *testing.T) {
	e, clk := newTestEngine(t)

	sub := e.Subscribe(1)
	startGame(t, e, ModeTimed)
	clk.Advance(5 * TickInterval)

	latest := e.State()
	got := <-sub.States()
	if got.Seq != latest.Seq {
		t.Errorf("slow subscriber got seq %d, expected latest %d", got.Seq, latest.Seq)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	e, _ := newTestEngine(t)
	sub := e.Subscribe(4)

	e.Close()

	select {
	case <-sub.Done():
	default:
		t.Fatal("Close should end subscriptions")
	}

	late := e.Subscribe(4)
	select {
	case <-late.Done():
	default:
		t.Error("subscribing to a closed engine should return a closed subscription")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		mode Mode
		ok   bool
	}{
		{"practice", ModePractice, true},
		{"timed", ModeTimed, true},
		{"Timed", ModeTimed, true},
		{"blitz", ModePractice, false},
	}
	for _, tc := range tests {
		mode, ok := ParseMode(tc.in)
		if mode != tc.mode || ok != tc.ok {
			t.Errorf("ParseMode(%q) = (%v, %v), expected (%v, %v)", tc.in, mode, ok, tc.mode, tc.ok)
		}
	}
}
