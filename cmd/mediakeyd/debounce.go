package main

// KeyState is the debouncer memory: the most recently seen key and whether it
// is currently held.
//
// Only one key is tracked at a time. A release of a different key than the
// tracked one overwrites the state (and is mapped like any other untracked
// event), while the tracked key's own release is dropped. Quickly interleaved
// presses of two keys can therefore be misclassified. This is a known
// limitation of the single-key model.
//
// The zero value is ready to use. KeyState is owned by the input loop and is
// not safe for concurrent use.
type KeyState struct {
	LastCode uint16
	IsDown   bool
}

// Process feeds one key event into the debouncer and returns the action to
// dispatch, if any.
//
// value is 0 (release), 1 (press) or 2 (auto-repeat). Auto-repeat counts as
// "still pressed", so holding a key yields exactly one action.
func (s *KeyState) Process(code uint16, value int32, keys KeyMap) (Action, bool) {
	if value == evValueRepeat {
		value = evValuePress
	}

	if s.IsDown && code == s.LastCode {
		switch value {
		case evValuePress:
			// Repeat while held
			return 0, false
		case evValueRelease:
			s.IsDown = false
			return 0, false
		}
	}

	s.LastCode = code
	s.IsDown = value == evValuePress

	return keys.Lookup(code)
}
