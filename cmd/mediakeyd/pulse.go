package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

const pulseDefaultSinkName = "@DEFAULT_SINK@"

// PulseMixer talks to PulseAudio (or pipewire-pulse) over its native protocol.
type PulseMixer struct {
	client *pulse.Client
	logger *slog.Logger
}

// NewPulseMixer connects to the audio server named by the environment
// (PULSE_SERVER / XDG_RUNTIME_DIR).
func NewPulseMixer(logger *slog.Logger) (*PulseMixer, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName("mediakeyd"))
	if err != nil {
		return nil, fmt.Errorf("%w: connect pulseaudio: %w", ErrMixerUnavailable, err)
	}
	return &PulseMixer{client: client, logger: logger}, nil
}

// Close closes the server connection.
func (m *PulseMixer) Close() error {
	m.client.Close()
	return nil
}

func (m *PulseMixer) sinkInfo(index uint32) (*proto.GetSinkInfoReply, error) {
	req := &proto.GetSinkInfo{SinkIndex: index}
	if index == proto.Undefined {
		req.SinkName = pulseDefaultSinkName
	}
	var info proto.GetSinkInfoReply
	if err := m.client.RawRequest(req, &info); err != nil {
		return nil, fmt.Errorf("%w: get sink info: %w", ErrMixerUnavailable, err)
	}
	return &info, nil
}

// DefaultSink returns the server's default sink.
func (m *PulseMixer) DefaultSink() (Sink, error) {
	info, err := m.sinkInfo(proto.Undefined)
	if err != nil {
		return Sink{}, err
	}
	sink := Sink{
		Index:  info.SinkIndex,
		Name:   info.SinkName,
		Mute:   info.Mute,
		Volume: pulseVolumePercent(info.ChannelVolumes),
	}
	m.logger.Debug("pulse default sink", "index", sink.Index, "name", sink.Name, "mute", sink.Mute, "volume_pct", sink.Volume)
	return sink, nil
}

// SetMute sets the mute flag of the given sink.
func (m *PulseMixer) SetMute(index uint32, mute bool) error {
	if err := m.client.RawRequest(&proto.SetSinkMute{SinkIndex: index, Mute: mute}, nil); err != nil {
		return fmt.Errorf("%w: set sink mute: %w", ErrMixerUnavailable, err)
	}
	m.logger.Debug("pulse SetSinkMute", "index", index, "mute", mute)
	return nil
}

// IncreaseVolume raises every channel by percent, saturating at 100%.
func (m *PulseMixer) IncreaseVolume(index uint32, percent float64) error {
	return m.adjustVolume(index, percent)
}

// DecreaseVolume lowers every channel by percent, saturating at 0%.
func (m *PulseMixer) DecreaseVolume(index uint32, percent float64) error {
	return m.adjustVolume(index, -percent)
}

func (m *PulseMixer) adjustVolume(index uint32, delta float64) error {
	info, err := m.sinkInfo(index)
	if err != nil {
		return err
	}

	volumes := scalePulseVolumes(info.ChannelVolumes, delta)
	if err := m.client.RawRequest(&proto.SetSinkVolume{SinkIndex: index, ChannelVolumes: volumes}, nil); err != nil {
		return fmt.Errorf("%w: set sink volume: %w", ErrMixerUnavailable, err)
	}
	m.logger.Debug("pulse SetSinkVolume", "index", index, "delta_pct", delta, "volume_pct", pulseVolumePercent(volumes))
	return nil
}

// pulseVolumePercent averages channel volumes into a percentage of VolumeNorm.
func pulseVolumePercent(v proto.ChannelVolumes) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, c := range v {
		sum += float64(c)
	}
	return sum / float64(len(v)) / float64(proto.VolumeNorm) * 100
}

// scalePulseVolumes shifts each channel by delta percent, clamped to
// [0, VolumeNorm].
func scalePulseVolumes(v proto.ChannelVolumes, delta float64) proto.ChannelVolumes {
	out := make(proto.ChannelVolumes, len(v))
	for i, c := range v {
		pct := stepPercent(float64(c)/float64(proto.VolumeNorm)*100, delta)
		out[i] = uint32(math.Round(pct / 100 * float64(proto.VolumeNorm)))
	}
	return out
}
