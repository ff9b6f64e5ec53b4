package main

import (
	"errors"
	"testing"
)

func players(ps ...*mockPlayer) []Player {
	out := make([]Player, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// TestSelectPlayer_None tests an empty player list
func TestSelectPlayer_None(t *testing.T) {
	s := NewPlayerSelector()
	if _, err := s.Select(nil); !errors.Is(err, ErrNoPlayerFound) {
		t.Fatalf("expected ErrNoPlayerFound, got %v", err)
	}
	if _, ok := s.LastActive(); ok {
		t.Error("expected no last active player")
	}
}

// TestSelectPlayer_SingleNoStatusQuery tests that a lone player is returned
// without asking for its status
func TestSelectPlayer_SingleNoStatusQuery(t *testing.T) {
	p := newMockPlayer(":1.10", StatusStopped)
	s := NewPlayerSelector()

	got, err := s.Select(players(p))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got != p {
		t.Fatalf("expected %s, got %s", p.name, got.UniqueName())
	}
	if p.statusCalls != 0 {
		t.Errorf("expected no status queries, got %d", p.statusCalls)
	}
	if _, ok := s.LastActive(); ok {
		t.Error("single-player selection must not update last active")
	}
}

// TestSelectPlayer_PlayingPreferred tests that the first playing player wins
func TestSelectPlayer_PlayingPreferred(t *testing.T) {
	a := newMockPlayer("A", StatusPaused)
	b := newMockPlayer("B", StatusPlaying)
	c := newMockPlayer("C", StatusPlaying)

	got, err := selectPlayer(players(a, b, c), "A", true)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != b {
		t.Fatalf("expected B, got %s", got.UniqueName())
	}
	for _, p := range []*mockPlayer{a, b, c} {
		if p.statusCalls != 1 {
			t.Errorf("%s: expected 1 status query, got %d", p.name, p.statusCalls)
		}
	}
}

// TestSelectPlayer_PlayingAmongMixed tests a playing player between a stopped
// and a paused one
func TestSelectPlayer_PlayingAmongMixed(t *testing.T) {
	a := newMockPlayer("A", StatusStopped)
	b := newMockPlayer("B", StatusPlaying)
	c := newMockPlayer("C", StatusPaused)

	got, err := selectPlayer(players(a, b, c), "C", true)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != b {
		t.Fatalf("expected B, got %s", got.UniqueName())
	}
}

// TestSelectPlayer_SinglePaused tests that the only paused player wins
func TestSelectPlayer_SinglePaused(t *testing.T) {
	a := newMockPlayer("A", StatusStopped)
	b := newMockPlayer("B", StatusPaused)
	c := newMockPlayer("C", StatusStopped)

	got, err := selectPlayer(players(a, b, c), "", false)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != b {
		t.Fatalf("expected B, got %s", got.UniqueName())
	}
}

// TestSelectPlayer_StoppedAndErrored tests that a failed status query counts
// as stopped, so the only remaining stopped player is not unique
func TestSelectPlayer_StoppedAndErrored(t *testing.T) {
	a := newMockPlayer("A", StatusStopped)
	b := newMockPlayer("B", StatusPlaying)
	b.statusErr = ErrStatusQueryFailed

	got, err := selectPlayer(players(a, b), "B", true)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	// Both count as stopped: fall back to the last active player
	if got != b {
		t.Fatalf("expected B, got %s", got.UniqueName())
	}
}

// TestSelectPlayer_StableFallback tests ambiguous states with and without a
// remembered player
func TestSelectPlayer_StableFallback(t *testing.T) {
	a := newMockPlayer("A", StatusPaused)
	b := newMockPlayer("B", StatusPaused)

	got, err := selectPlayer(players(a, b), "B", true)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != b {
		t.Errorf("with last active B: expected B, got %s", got.UniqueName())
	}

	got, err = selectPlayer(players(a, b), "", false)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != a {
		t.Errorf("without last active: expected A, got %s", got.UniqueName())
	}

	// Remembered player has gone away
	got, err = selectPlayer(players(a, b), "Z", true)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != a {
		t.Errorf("with stale last active: expected A, got %s", got.UniqueName())
	}
}

// TestSelectPlayer_MultipleStopped tests that several stopped players fall
// back to the alternative
func TestSelectPlayer_MultipleStopped(t *testing.T) {
	a := newMockPlayer("A", StatusStopped)
	b := newMockPlayer("B", StatusStopped)

	got, err := selectPlayer(players(a, b), "", false)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != a {
		t.Fatalf("expected A, got %s", got.UniqueName())
	}
}

// TestSelectPlayer_MultipleStoppedLastActive tests that several stopped
// players fall back to the remembered one
func TestSelectPlayer_MultipleStoppedLastActive(t *testing.T) {
	a := newMockPlayer("A", StatusStopped)
	b := newMockPlayer("B", StatusStopped)

	got, err := selectPlayer(players(a, b), "B", true)
	if err != nil {
		t.Fatalf("selectPlayer: %v", err)
	}
	if got != b {
		t.Fatalf("expected B, got %s", got.UniqueName())
	}
}

// TestPlayerSelector_RemembersChoice tests that a multi-player selection is
// remembered and used for the next ambiguous choice
func TestPlayerSelector_RemembersChoice(t *testing.T) {
	a := newMockPlayer("A", StatusPaused)
	b := newMockPlayer("B", StatusPlaying)
	s := NewPlayerSelector()

	got, err := s.Select(players(a, b))
	if err != nil || got != b {
		t.Fatalf("expected B, got %v (err %v)", got, err)
	}
	if last, ok := s.LastActive(); !ok || last != "B" {
		t.Fatalf("expected last active B, got %q %v", last, ok)
	}

	// B paused too: ambiguous, the remembered B wins over the first player
	b.status = StatusPaused
	got, err = s.Select(players(a, b))
	if err != nil || got != b {
		t.Fatalf("expected B, got %v (err %v)", got, err)
	}

	// A single player does not overwrite the memory
	if _, err := s.Select(players(a)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if last, _ := s.LastActive(); last != "B" {
		t.Errorf("expected last active to remain B, got %q", last)
	}
}

// TestParsePlaybackStatus tests PlaybackStatus string parsing
func TestParsePlaybackStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    PlaybackStatus
		wantErr bool
	}{
		{"Playing", StatusPlaying, false},
		{"Paused", StatusPaused, false},
		{"Stopped", StatusStopped, false},
		{"playing", StatusStopped, true},
		{"", StatusStopped, true},
	}
	for _, tt := range tests {
		got, err := parsePlaybackStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrStatusQueryFailed) {
			t.Errorf("%q: expected ErrStatusQueryFailed, got %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}
