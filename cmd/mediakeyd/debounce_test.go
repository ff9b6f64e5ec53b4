package main

import "testing"

type keyInput struct {
	code  uint16
	value int32
}

// feed runs events through a fresh KeyState and returns the emitted actions.
func feed(t *testing.T, keys KeyMap, events ...keyInput) []Action {
	t.Helper()
	var s KeyState
	var out []Action
	for _, ev := range events {
		if a, ok := s.Process(ev.code, ev.value, keys); ok {
			out = append(out, a)
		}
	}
	return out
}

// TestKeyState_HoldEmitsOnce tests that auto-repeat never re-emits
func TestKeyState_HoldEmitsOnce(t *testing.T) {
	got := feed(t, DefaultKeyMap(),
		keyInput{KEY_VOLUMEUP, evValuePress},
		keyInput{KEY_VOLUMEUP, evValueRepeat},
		keyInput{KEY_VOLUMEUP, evValueRepeat},
		keyInput{KEY_VOLUMEUP, evValueRepeat},
		keyInput{KEY_VOLUMEUP, evValueRepeat},
		keyInput{KEY_VOLUMEUP, evValueRelease},
	)
	if len(got) != 1 || got[0] != ActionVolumeUp {
		t.Fatalf("expected [volume_up], got %v", got)
	}
}

// TestKeyState_PressReleasePress tests that two distinct presses emit twice
func TestKeyState_PressReleasePress(t *testing.T) {
	got := feed(t, DefaultKeyMap(),
		keyInput{KEY_PLAYPAUSE, evValuePress},
		keyInput{KEY_PLAYPAUSE, evValueRelease},
		keyInput{KEY_PLAYPAUSE, evValuePress},
	)
	if len(got) != 2 {
		t.Fatalf("expected 2 actions, got %v", got)
	}
	for _, a := range got {
		if a != ActionPlayPause {
			t.Errorf("expected play_pause, got %v", a)
		}
	}
}

// TestKeyState_UnknownCodeNeverEmits tests unmapped keys in any sequence
func TestKeyState_UnknownCodeNeverEmits(t *testing.T) {
	const KEY_A = 30
	got := feed(t, DefaultKeyMap(),
		keyInput{KEY_A, evValuePress},
		keyInput{KEY_A, evValueRepeat},
		keyInput{KEY_A, evValueRelease},
		keyInput{KEY_A, evValueRelease},
		keyInput{KEY_A, evValuePress},
	)
	if len(got) != 0 {
		t.Fatalf("expected no actions, got %v", got)
	}
}

// TestKeyState_TrackedReleaseClearsDown tests the state after a release
func TestKeyState_TrackedReleaseClearsDown(t *testing.T) {
	var s KeyState
	keys := DefaultKeyMap()

	if a, ok := s.Process(KEY_MUTE, evValuePress, keys); !ok || a != ActionMute {
		t.Fatalf("expected mute on press, got %v %v", a, ok)
	}
	if !s.IsDown || s.LastCode != KEY_MUTE {
		t.Fatalf("expected mute held, got %+v", s)
	}

	if _, ok := s.Process(KEY_MUTE, evValueRelease, keys); ok {
		t.Fatal("release of the tracked key must not emit")
	}
	if s.IsDown {
		t.Error("expected IsDown=false after release")
	}
	if s.LastCode != KEY_MUTE {
		t.Errorf("expected LastCode to stay %d, got %d", KEY_MUTE, s.LastCode)
	}
}

// TestKeyState_FirstRepeatEmits tests a repeat with no prior press (key held at startup)
func TestKeyState_FirstRepeatEmits(t *testing.T) {
	got := feed(t, DefaultKeyMap(),
		keyInput{KEY_NEXTSONG, evValueRepeat},
		keyInput{KEY_NEXTSONG, evValueRepeat},
	)
	if len(got) != 1 || got[0] != ActionNextTrack {
		t.Fatalf("expected [next_track], got %v", got)
	}
}

// TestKeyState_SwitchKeys tests that pressing a second key while the first is
// held takes over the tracked state
func TestKeyState_SwitchKeys(t *testing.T) {
	var s KeyState
	keys := DefaultKeyMap()

	s.Process(KEY_VOLUMEUP, evValuePress, keys)
	a, ok := s.Process(KEY_VOLUMEDOWN, evValuePress, keys)
	if !ok || a != ActionVolumeDown {
		t.Fatalf("expected volume_down, got %v %v", a, ok)
	}
	if s.LastCode != KEY_VOLUMEDOWN || !s.IsDown {
		t.Fatalf("expected volume down tracked as held, got %+v", s)
	}

	// Repeat of the new key is swallowed
	if _, ok := s.Process(KEY_VOLUMEDOWN, evValueRepeat, keys); ok {
		t.Error("repeat of the tracked key must not emit")
	}
}

// TestKeyState_ReleaseOfOtherKey documents the single-key limitation: a
// release of an untracked key falls through to the lookup.
func TestKeyState_ReleaseOfOtherKey(t *testing.T) {
	var s KeyState
	keys := DefaultKeyMap()

	s.Process(KEY_VOLUMEUP, evValuePress, keys)
	s.Process(KEY_MUTE, evValuePress, keys)

	a, ok := s.Process(KEY_VOLUMEUP, evValueRelease, keys)
	if !ok || a != ActionVolumeUp {
		t.Fatalf("expected volume_up from untracked release, got %v %v", a, ok)
	}
	if s.LastCode != KEY_VOLUMEUP || s.IsDown {
		t.Errorf("expected state {LastCode:%d IsDown:false}, got %+v", KEY_VOLUMEUP, s)
	}
}

// TestKeyState_CustomBinding tests a key added via configuration
func TestKeyState_CustomBinding(t *testing.T) {
	const KEY_PLAYCD = 200
	keys, err := DefaultKeyMap().With(map[uint16]string{KEY_PLAYCD: "play_pause"})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	got := feed(t, keys,
		keyInput{KEY_PLAYCD, evValuePress},
		keyInput{KEY_PLAYCD, evValueRelease},
	)
	if len(got) != 1 || got[0] != ActionPlayPause {
		t.Fatalf("expected [play_pause], got %v", got)
	}
}
