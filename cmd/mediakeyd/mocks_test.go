package main

import (
	"errors"
	"fmt"
	"sync"
)

// mockPlayer is a test double for an MPRIS player
type mockPlayer struct {
	name      string
	status    PlaybackStatus
	statusErr error
	cmdErr    error

	statusCalls int
	calls       []string
}

func newMockPlayer(name string, status PlaybackStatus) *mockPlayer {
	return &mockPlayer{name: name, status: status}
}

func (p *mockPlayer) UniqueName() string { return p.name }
func (p *mockPlayer) Identity() string   { return "mock " + p.name }

func (p *mockPlayer) PlaybackStatus() (PlaybackStatus, error) {
	p.statusCalls++
	if p.statusErr != nil {
		return StatusStopped, p.statusErr
	}
	return p.status, nil
}

func (p *mockPlayer) record(method string) error {
	p.calls = append(p.calls, method)
	return p.cmdErr
}

func (p *mockPlayer) PlayPause() error { return p.record("PlayPause") }
func (p *mockPlayer) Stop() error      { return p.record("Stop") }
func (p *mockPlayer) Next() error      { return p.record("Next") }
func (p *mockPlayer) Previous() error  { return p.record("Previous") }

// mockRegistry returns a fixed player list
type mockRegistry struct {
	players []*mockPlayer
	err     error
	calls   int
}

func (r *mockRegistry) FindAll() ([]Player, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = p
	}
	return out, nil
}

func (r *mockRegistry) Close() error { return nil }

// mockMixer is an in-memory mixer with the same saturation rules as the real
// backends. Every call is recorded in order.
type mockMixer struct {
	sink Sink

	defaultSinkErr error
	setMuteErr     error
	volumeErr      error

	calls []string
}

func newMockMixer(volume float64, muted bool) *mockMixer {
	return &mockMixer{sink: Sink{Index: 7, Name: "mock_sink", Mute: muted, Volume: volume}}
}

func (m *mockMixer) DefaultSink() (Sink, error) {
	m.calls = append(m.calls, "DefaultSink")
	if m.defaultSinkErr != nil {
		return Sink{}, m.defaultSinkErr
	}
	return m.sink, nil
}

func (m *mockMixer) SetMute(index uint32, mute bool) error {
	m.calls = append(m.calls, fmt.Sprintf("SetMute(%d,%v)", index, mute))
	if m.setMuteErr != nil {
		return m.setMuteErr
	}
	m.sink.Mute = mute
	return nil
}

func (m *mockMixer) IncreaseVolume(index uint32, percent float64) error {
	m.calls = append(m.calls, fmt.Sprintf("IncreaseVolume(%d,%g)", index, percent))
	if m.volumeErr != nil {
		return m.volumeErr
	}
	m.sink.Volume = stepPercent(m.sink.Volume, percent)
	return nil
}

func (m *mockMixer) DecreaseVolume(index uint32, percent float64) error {
	m.calls = append(m.calls, fmt.Sprintf("DecreaseVolume(%d,%g)", index, percent))
	if m.volumeErr != nil {
		return m.volumeErr
	}
	m.sink.Volume = stepPercent(m.sink.Volume, -percent)
	return nil
}

func (m *mockMixer) Close() error { return nil }

// recordingDispatcher records dispatched actions and can fail selected ones
type recordingDispatcher struct {
	mu      sync.Mutex
	actions []Action
	failOn  map[Action]bool
}

var errMockDispatch = errors.New("mock dispatch failure")

func (d *recordingDispatcher) Dispatch(a Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, a)
	if d.failOn[a] {
		return errMockDispatch
	}
	return nil
}

func (d *recordingDispatcher) got() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Action(nil), d.actions...)
}
