package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/namegame/internal/profile"
)

// ErrInsufficientProfiles is returned when the pool cannot fill a round.
var ErrInsufficientProfiles = errors.New("game: insufficient profiles")

// Round is one "name + six photos" question.
type Round struct {
	Candidates    []profile.Profile
	Target        profile.Profile
	Selected      *profile.Profile
	WrongGuessIDs map[string]struct{} // Timed mode only, cleared with the round
	ShowResult    bool
	IsCorrect     bool // Outcome of the last evaluated guess
}

// GenerateRound draws CandidateCount distinct profiles from pool in random
// order and picks one of them as the target.
func GenerateRound(pool []profile.Profile, rng *rand.Rand) (Round, error) {
	if len(pool) < CandidateCount {
		return Round{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientProfiles, CandidateCount, len(pool))
	}

	candidates := make([]profile.Profile, 0, CandidateCount)
	seen := make(map[string]struct{}, CandidateCount)
	for _, i := range rng.Perm(len(pool)) {
		p := pool[i]
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		candidates = append(candidates, p)
		if len(candidates) == CandidateCount {
			break
		}
	}

	if len(candidates) < CandidateCount {
		return Round{}, fmt.Errorf("%w: need %d distinct ids, have %d", ErrInsufficientProfiles, CandidateCount, len(candidates))
	}

	return Round{
		Candidates:    candidates,
		Target:        candidates[rng.Intn(len(candidates))],
		WrongGuessIDs: make(map[string]struct{}),
	}, nil
}

// HasCandidate reports whether id is one of the round's candidates.
func (r Round) HasCandidate(id string) bool {
	for _, c := range r.Candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}

// clone returns a deep copy safe to publish.
func (r Round) clone() Round {
	out := Round{
		Target:     r.Target,
		ShowResult: r.ShowResult,
		IsCorrect:  r.IsCorrect,
	}
	if r.Candidates != nil {
		out.Candidates = make([]profile.Profile, len(r.Candidates))
		copy(out.Candidates, r.Candidates)
	}
	if r.Selected != nil {
		sel := *r.Selected
		out.Selected = &sel
	}
	out.WrongGuessIDs = make(map[string]struct{}, len(r.WrongGuessIDs))
	for id := range r.WrongGuessIDs {
		out.WrongGuessIDs[id] = struct{}{}
	}
	return out
}
