package main

import (
	"fmt"
	"sort"
	"strings"
)

// Action is a media command derived from a key press.
type Action int

const (
	ActionMute Action = iota + 1
	ActionVolumeUp
	ActionVolumeDown
	ActionNextTrack
	ActionPreviousTrack
	ActionPlayPause
	ActionStop
)

// actionNames doubles as the config/IPC vocabulary.
var actionNames = map[Action]string{
	ActionMute:          "mute",
	ActionVolumeUp:      "volume_up",
	ActionVolumeDown:    "volume_down",
	ActionNextTrack:     "next_track",
	ActionPreviousTrack: "previous_track",
	ActionPlayPause:     "play_pause",
	ActionStop:          "stop",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// IsTransport reports whether the action targets a media player.
func (a Action) IsTransport() bool {
	switch a {
	case ActionNextTrack, ActionPreviousTrack, ActionPlayPause, ActionStop:
		return true
	}
	return false
}

// ParseAction converts a config/IPC action name into an Action.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action: %q (must be one of %s)", name, strings.Join(ActionNames(), ", "))
}

// ActionNames returns every action name in sorted order.
func ActionNames() []string {
	names := make([]string, 0, len(actionNames))
	for _, n := range actionNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// KeyMap maps evdev key codes to actions.
type KeyMap map[uint16]Action

// DefaultKeyMap returns the standard media key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		KEY_MUTE:         ActionMute,
		KEY_VOLUMEUP:     ActionVolumeUp,
		KEY_VOLUMEDOWN:   ActionVolumeDown,
		KEY_NEXTSONG:     ActionNextTrack,
		KEY_PREVIOUSSONG: ActionPreviousTrack,
		KEY_PLAYPAUSE:    ActionPlayPause,
		KEY_STOPCD:       ActionStop,
	}
}

// Lookup returns the action bound to code, if any.
func (k KeyMap) Lookup(code uint16) (Action, bool) {
	a, ok := k[code]
	return a, ok
}

// With returns a copy of k with extra bindings applied on top.
func (k KeyMap) With(extra map[uint16]string) (KeyMap, error) {
	out := make(KeyMap, len(k)+len(extra))
	for code, a := range k {
		out[code] = a
	}
	for code, name := range extra {
		a, err := ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", code, err)
		}
		out[code] = a
	}
	return out, nil
}

// Codes returns the bound key codes in ascending order.
func (k KeyMap) Codes() []uint16 {
	codes := make([]uint16, 0, len(k))
	for code := range k {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
