package main

import "errors"

// Startup failures. Both are fatal: the daemon logs them and exits.
var (
	ErrDeviceOpenFailed            = errors.New("input device open failed")
	ErrReadinessRegistrationFailed = errors.New("input readiness registration failed")
)

// Per-event failures. These are logged and the loop moves on to the next event.
var (
	ErrPlayerDiscoveryFailed  = errors.New("player discovery failed")
	ErrNoPlayerFound          = errors.New("no player found")
	ErrStatusQueryFailed      = errors.New("playback status query failed")
	ErrMixerUnavailable       = errors.New("audio mixer unavailable")
	ErrTransportCommandFailed = errors.New("transport command failed")
)

// errSourceWoken is returned by EventSource.Wait when Wake interrupted it.
var errSourceWoken = errors.New("event source woken")
