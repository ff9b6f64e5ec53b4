package main

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// IPC request envelopes
// ============================================================================
// Clients send one JSON object per line: {"type": "media_next"}.
// The type discriminator names the action to dispatch. Key-binding names
// (see actionNames) are accepted as aliases.
// ============================================================================

// RequestEnvelope is a single IPC request.
type RequestEnvelope struct {
	Type string `json:"type"`
}

var ipcRequestTypes = map[string]Action{
	"toggle_mute":      ActionMute,
	"volume_up":        ActionVolumeUp,
	"volume_down":      ActionVolumeDown,
	"media_play_pause": ActionPlayPause,
	"media_next":       ActionNextTrack,
	"media_previous":   ActionPreviousTrack,
	"media_stop":       ActionStop,
}

// UnmarshalRequest decodes an IPC request line into the action it names.
func UnmarshalRequest(data []byte) (Action, error) {
	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if a, ok := ipcRequestTypes[env.Type]; ok {
		return a, nil
	}
	if a, err := ParseAction(env.Type); err == nil && env.Type != "" {
		return a, nil
	}
	return 0, fmt.Errorf("unknown request type: %q", env.Type)
}
