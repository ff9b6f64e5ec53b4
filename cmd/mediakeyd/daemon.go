package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ============================================================================
// Input Loop
// ============================================================================
// One goroutine owns the input device and the debouncer state:
//
//   wait for readiness -> drain all pending events -> debounce -> dispatch
//
// Actions are dispatched in the order their events were read. A failed action
// is logged and the loop moves on; only a broken device ends the loop.
// ============================================================================

// runLoop processes input events until ctx is canceled or the source fails.
//
// Cancellation alone does not unblock Wait; the caller must also call
// src.Wake (see main).
func runLoop(ctx context.Context, src EventSource, disp actionDispatcher, keys KeyMap, logger *slog.Logger) error {
	var state KeyState

	for {
		if ctx.Err() != nil {
			logger.Debug("input loop stopping (context canceled)")
			return nil
		}

		if err := src.Wait(); err != nil {
			if errors.Is(err, errSourceWoken) {
				continue
			}
			return fmt.Errorf("wait for input: %w", err)
		}

		events, readErr := src.ReadAvailable()
		for _, ev := range events {
			handleEvent(&state, ev, disp, keys, logger)
		}
		if readErr != nil {
			return fmt.Errorf("read input: %w", readErr)
		}
	}
}

// handleEvent debounces one raw event and dispatches the resulting action.
func handleEvent(state *KeyState, ev RawEvent, disp actionDispatcher, keys KeyMap, logger *slog.Logger) {
	if ev.Type != EV_KEY {
		return
	}

	action, ok := state.Process(ev.Code, ev.Value, keys)
	if !ok {
		return
	}

	logger.Debug("key action", "code", ev.Code, "value", ev.Value, "action", action.String(), "at", ev.Time())
	if err := disp.Dispatch(action); err != nil {
		logger.Error("action failed", "action", action.String(), "error", err)
	}
}
