package main

// Sink is a snapshot of the default audio output.
type Sink struct {
	Index  uint32
	Name   string
	Mute   bool
	Volume float64 // percent, 0-100
}

// Mixer controls the audio server's default sink.
//
// Volume changes saturate at 0% and 100%.
type Mixer interface {
	DefaultSink() (Sink, error)
	SetMute(index uint32, mute bool) error
	IncreaseVolume(index uint32, percent float64) error
	DecreaseVolume(index uint32, percent float64) error
	Close() error
}

// stepPercent applies delta (in percent) to current and clamps the result to
// [0, 100].
func stepPercent(current, delta float64) float64 {
	next := current + delta
	if next < 0 {
		next = 0
	}
	if next > 100 {
		next = 100
	}
	return next
}
