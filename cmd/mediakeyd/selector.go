package main

import (
	"fmt"
	"sync"
)

// PlaybackStatus is the MPRIS playback state of a player.
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPaused
	StatusPlaying
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Player is a running media player that can receive transport commands.
type Player interface {
	// UniqueName is the stable identity used to remember the last active player.
	UniqueName() string
	// Identity is a human-readable name, for logging only.
	Identity() string

	PlaybackStatus() (PlaybackStatus, error)
	PlayPause() error
	Stop() error
	Next() error
	Previous() error
}

// PlayerRegistry discovers the currently running media players.
type PlayerRegistry interface {
	FindAll() ([]Player, error)
	Close() error
}

// PlayerSelector picks the player that should receive a transport command and
// remembers the last one it picked when the choice was ambiguous.
//
// Safe for concurrent use.
type PlayerSelector struct {
	mu         sync.Mutex
	lastActive string
	hasLast    bool
}

// NewPlayerSelector creates a selector with no remembered player.
func NewPlayerSelector() *PlayerSelector {
	return &PlayerSelector{}
}

// LastActive returns the remembered player identity, if any.
func (s *PlayerSelector) LastActive() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.hasLast
}

// Select picks a player from players (in discovery order).
//
// When more than one player was offered, the chosen player's identity is
// remembered and used to break future ties.
func (s *PlayerSelector) Select(players []Player) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := selectPlayer(players, s.lastActive, s.hasLast)
	if err != nil {
		return nil, err
	}
	if len(players) > 1 {
		s.lastActive = p.UniqueName()
		s.hasLast = true
	}
	return p, nil
}

// selectPlayer implements the selection heuristic:
//
//   - a single player is returned without querying its status
//   - otherwise the first Playing player wins
//   - else the only Paused player
//   - else, if nothing is Paused, the only Stopped player
//   - else the last active player if it is still present, or the first player
//
// A failed status query counts as Stopped.
func selectPlayer(players []Player, lastActive string, hasLast bool) (Player, error) {
	switch len(players) {
	case 0:
		return nil, ErrNoPlayerFound
	case 1:
		return players[0], nil
	}

	var playing, paused, stopped []Player
	for _, p := range players {
		st, err := p.PlaybackStatus()
		if err != nil {
			st = StatusStopped
		}
		switch st {
		case StatusPlaying:
			playing = append(playing, p)
		case StatusPaused:
			paused = append(paused, p)
		default:
			stopped = append(stopped, p)
		}
	}

	switch {
	case len(playing) > 0:
		return playing[0], nil
	case len(paused) == 1:
		return paused[0], nil
	case len(paused) == 0 && len(stopped) == 1:
		return stopped[0], nil
	}

	if hasLast {
		for _, p := range players {
			if p.UniqueName() == lastActive {
				return p, nil
			}
		}
	}
	return players[0], nil
}

// parsePlaybackStatus converts an MPRIS PlaybackStatus property value.
func parsePlaybackStatus(v string) (PlaybackStatus, error) {
	switch v {
	case "Playing":
		return StatusPlaying, nil
	case "Paused":
		return StatusPaused, nil
	case "Stopped":
		return StatusStopped, nil
	default:
		return StatusStopped, fmt.Errorf("%w: unknown playback status %q", ErrStatusQueryFailed, v)
	}
}
