package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Dispatcher routes actions to the audio mixer or, for transport actions, to
// the media player chosen by its PlayerSelector.
//
// Dispatch calls are serialized so actions from different sources (input
// loop, IPC) never interleave. Collaborator calls are blocking and are not
// retried.
type Dispatcher struct {
	mu sync.Mutex

	mixer    Mixer
	players  PlayerRegistry
	selector *PlayerSelector

	stepPercent float64
	logger      *slog.Logger
}

// NewDispatcher creates a dispatcher with a fresh PlayerSelector.
func NewDispatcher(mixer Mixer, players PlayerRegistry, stepPercent float64, logger *slog.Logger) *Dispatcher {
	if stepPercent <= 0 {
		stepPercent = defaultStepPercent
	}
	return &Dispatcher{
		mixer:       mixer,
		players:     players,
		selector:    NewPlayerSelector(),
		stepPercent: stepPercent,
		logger:      logger,
	}
}

// Dispatch executes a single action.
func (d *Dispatcher) Dispatch(a Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case a == ActionMute:
		return d.toggleMute()
	case a == ActionVolumeUp:
		return d.adjustVolume(d.stepPercent)
	case a == ActionVolumeDown:
		return d.adjustVolume(-d.stepPercent)
	case a.IsTransport():
		return d.transport(a)
	default:
		return fmt.Errorf("unsupported action: %v", a)
	}
}

func (d *Dispatcher) toggleMute() error {
	if d.mixer == nil {
		return fmt.Errorf("mute: %w", ErrMixerUnavailable)
	}
	sink, err := d.mixer.DefaultSink()
	if err != nil {
		return fmt.Errorf("mute: %w", err)
	}
	if err := d.mixer.SetMute(sink.Index, !sink.Mute); err != nil {
		return fmt.Errorf("mute: %w", err)
	}
	d.logger.Debug("mute toggled", "sink", sink.Name, "muted", !sink.Mute)
	return nil
}

// adjustVolume unmutes a muted sink first, then changes its volume by delta percent.
func (d *Dispatcher) adjustVolume(delta float64) error {
	if d.mixer == nil {
		return fmt.Errorf("volume: %w", ErrMixerUnavailable)
	}
	sink, err := d.mixer.DefaultSink()
	if err != nil {
		return fmt.Errorf("volume: %w", err)
	}

	if sink.Mute {
		if err := d.mixer.SetMute(sink.Index, false); err != nil {
			return fmt.Errorf("volume: unmute: %w", err)
		}
	}

	if delta < 0 {
		err = d.mixer.DecreaseVolume(sink.Index, -delta)
	} else {
		err = d.mixer.IncreaseVolume(sink.Index, delta)
	}
	if err != nil {
		return fmt.Errorf("volume: %w", err)
	}
	d.logger.Debug("volume changed", "sink", sink.Name, "from_pct", sink.Volume, "delta_pct", delta)
	return nil
}

func (d *Dispatcher) transport(a Action) error {
	if d.players == nil {
		return fmt.Errorf("%v: %w", a, ErrPlayerDiscoveryFailed)
	}
	players, err := d.players.FindAll()
	if err != nil {
		if !errors.Is(err, ErrPlayerDiscoveryFailed) {
			err = fmt.Errorf("%w: %w", ErrPlayerDiscoveryFailed, err)
		}
		return fmt.Errorf("%v: %w", a, err)
	}

	player, err := d.selector.Select(players)
	if err != nil {
		return fmt.Errorf("%v: %w", a, err)
	}

	if a == ActionNextTrack || a == ActionPreviousTrack {
		// A stopped target is noted but still receives the command.
		st, err := player.PlaybackStatus()
		switch {
		case err != nil:
			d.logger.Debug("playback status unavailable", "player", player.Identity(), "error", err)
		case st == StatusStopped:
			d.logger.Debug("track skip sent to stopped player", "player", player.Identity(), "status", st.String())
		}
	}

	switch a {
	case ActionNextTrack:
		err = player.Next()
	case ActionPreviousTrack:
		err = player.Previous()
	case ActionPlayPause:
		err = player.PlayPause()
	case ActionStop:
		err = player.Stop()
	}
	if err != nil {
		if !errors.Is(err, ErrTransportCommandFailed) {
			err = fmt.Errorf("%w: %w", ErrTransportCommandFailed, err)
		}
		return fmt.Errorf("%v: %w", a, err)
	}

	d.logger.Debug("transport command sent", "action", a.String(), "player", player.UniqueName(), "candidates", len(players))
	return nil
}
