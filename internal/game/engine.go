// Package game implements the quiz session engine: round generation, guess
// evaluation, scoring, the timed-mode clock and end-of-game detection.
// It contains no presentation code; platforms observe published State
// snapshots and drive the engine through its operations.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/namegame/internal/clock"
	"github.com/vovakirdan/namegame/internal/profile"
)

// Options configures an Engine.
type Options struct {
	Clock  clock.Clock // Defaults to clock.Real()
	Seed   int64       // RNG seed, 0 means time-based
	Logger *log.Logger // Optional
}

// Engine owns one quiz session. All mutation is serialized by mu; timer
// callbacks re-enter through fire, which drops callbacks whose handle was
// cancelled in the meantime.
type Engine struct {
	mu     sync.Mutex
	clock  clock.Clock
	rng    *rand.Rand
	logger *log.Logger

	pool  []profile.Profile
	state State

	pending map[uint64]clock.Timer
	nextID  uint64

	subs    map[uint64]*Subscription
	nextSub uint64
	closed  bool
}

// NewEngine creates an idle engine.
func NewEngine(opts Options) *Engine {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("engine")
	}

	return &Engine{
		clock:   clk,
		rng:     rand.New(rand.NewSource(seed)),
		logger:  logger,
		state:   idleState(),
		pending: make(map[uint64]clock.Timer),
		subs:    make(map[uint64]*Subscription),
	}
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Subscribe registers an observer. The current state is delivered first.
func (e *Engine) Subscribe(buffer int) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSub++
	sub := newSubscription(e.nextSub, e, buffer)
	if e.closed {
		sub.close()
		return sub
	}
	e.subs[sub.id] = sub
	sub.send(e.state.clone())
	return sub
}

func (e *Engine) unsubscribe(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, sub.id)
	sub.close()
}

// StartGame begins a session in the given mode. It fails without touching
// the current state when the pool cannot fill a round. Starting while a
// session is active restarts it.
func (e *Engine) StartGame(mode Mode, pool []profile.Profile) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	round, err := GenerateRound(pool, e.rng)
	if err != nil {
		return err
	}

	e.cancelAllLocked()
	e.pool = make([]profile.Profile, len(pool))
	copy(e.pool, pool)

	st := State{
		Seq:           e.state.Seq,
		Screen:        ScreenGame,
		Mode:          mode,
		Active:        true,
		TimeRemaining: timedSeconds,
		Round:         round,
	}
	e.state = st

	if mode == ModeTimed {
		e.scheduleTickLocked()
	}

	e.logger.Info("game started", "mode", mode, "pool", len(pool))
	e.publishLocked()
	return nil
}

// SelectProfile records a guess and reports whether it was accepted.
// Guesses are ignored while no session is active, while a result is on
// screen, for the already-selected candidate, for candidates already marked
// wrong this round and for profiles that are not candidates.
func (e *Engine) SelectProfile(p profile.Profile) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.CanSelect(p.ID) {
		return false
	}

	st := &e.state
	sel := p
	st.Round.Selected = &sel
	st.TotalGuesses++
	st.Round.IsCorrect = p.ID == st.Round.Target.ID
	st.Round.ShowResult = true

	if st.Round.IsCorrect {
		st.Score++
		st.CorrectGuesses++

		if st.Mode == ModePractice && st.Score >= PracticeWinScore {
			e.scheduleLocked(PracticeWinDelay, "practice win", e.endGameLocked)
		} else {
			e.scheduleLocked(AdvanceDelay, "next round", e.nextRoundLocked)
		}
	} else {
		switch st.Mode {
		case ModeTimed:
			st.Round.WrongGuessIDs[p.ID] = struct{}{}
			e.scheduleLocked(RetryDelay, "retry", e.clearSelectionLocked)
		case ModePractice:
			e.scheduleLocked(PracticeLossDelay, "practice loss", e.endGameLocked)
		}
	}

	e.logger.Debug("guess", "correct", st.Round.IsCorrect, "score", st.Score, "total", st.TotalGuesses)
	e.publishLocked()
	return true
}

// EndGame finishes the active session and raises the game-over signal.
// It has no effect when no session is active.
func (e *Engine) EndGame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endGameLocked()
}

// ResetGame cancels all pending work and returns to the menu.
// Callable from any state.
func (e *Engine) ResetGame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// Close resets the engine and closes every subscription.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	e.closed = true
	for id, sub := range e.subs {
		delete(e.subs, id)
		sub.close()
	}
}

func (e *Engine) resetLocked() {
	e.cancelAllLocked()
	e.pool = nil

	seq := e.state.Seq
	e.state = idleState()
	e.state.Seq = seq
	e.publishLocked()
}

func (e *Engine) endGameLocked() {
	if !e.state.Active {
		return
	}
	e.cancelAllLocked()

	st := &e.state
	st.Active = false
	st.GameOver = &GameOver{
		Mode:           st.Mode,
		Score:          st.Score,
		RoundsSurvived: st.CorrectGuesses,
		TotalGuesses:   st.TotalGuesses,
		Accuracy:       st.Accuracy(),
		Won:            st.Mode == ModePractice && st.Score >= PracticeWinScore,
	}

	e.logger.Info("game over", "mode", st.Mode, "score", st.Score, "guesses", st.TotalGuesses)
	e.publishLocked()
}

func (e *Engine) nextRoundLocked() {
	round, err := GenerateRound(e.pool, e.rng)
	if err != nil {
		e.logger.Error("cannot generate round", "error", err)
		e.endGameLocked()
		return
	}
	e.state.Round = round
	e.publishLocked()
}

func (e *Engine) clearSelectionLocked() {
	e.state.Round.Selected = nil
	e.state.Round.ShowResult = false
	e.state.Round.IsCorrect = false
	e.publishLocked()
}

func (e *Engine) tickLocked() {
	if !e.state.Active || e.state.Mode != ModeTimed {
		return
	}
	if e.state.TimeRemaining > 0 {
		e.state.TimeRemaining--
	}
	if e.state.TimeRemaining == 0 {
		e.endGameLocked()
		return
	}
	e.publishLocked()
	e.scheduleTickLocked()
}

func (e *Engine) scheduleTickLocked() {
	e.scheduleLocked(TickInterval, "", e.tickLocked)
}

// scheduleLocked registers fn to run after d under the engine lock, unless
// cancelled first.
func (e *Engine) scheduleLocked(d time.Duration, what string, fn func()) {
	e.nextID++
	id := e.nextID
	e.pending[id] = e.clock.AfterFunc(d, func() { e.fire(id, fn) })
	if what != "" {
		e.logger.Debug("scheduled", "transition", what, "after", d)
	}
}

func (e *Engine) fire(id uint64, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.pending[id]; !ok {
		return
	}
	delete(e.pending, id)
	fn()
}

func (e *Engine) cancelAllLocked() {
	for id, t := range e.pending {
		t.Stop()
		delete(e.pending, id)
	}
}

func (e *Engine) publishLocked() {
	e.state.Seq++
	for _, sub := range e.subs {
		sub.send(e.state.clone())
	}
}
