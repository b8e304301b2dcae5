// Package tui provides the Bubble Tea front end for the name game, used for
// local play and for SSH sessions served through Wish.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/profile"
)

// loadTimeout bounds a single profile load.
const loadTimeout = 30 * time.Second

// ProfilesLoadedMsg carries the result of a profile load.
type ProfilesLoadedMsg struct {
	Profiles []profile.Profile
	Err      error
}

// StateMsg delivers an engine snapshot.
type StateMsg game.State

// loadProfilesCmd fetches profiles off the UI goroutine.
func loadProfilesCmd(ctx context.Context, src profile.Source) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return ProfilesLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		profiles, err := src.Profiles(ctx)
		return ProfilesLoadedMsg{Profiles: profiles, Err: err}
	}
}

// waitForState returns a command that waits for the next engine snapshot.
func waitForState(sub *game.Subscription) tea.Cmd {
	return func() tea.Msg {
		if sub == nil {
			return nil
		}
		st, ok := <-sub.States()
		if !ok {
			return nil
		}
		return StateMsg(st)
	}
}
