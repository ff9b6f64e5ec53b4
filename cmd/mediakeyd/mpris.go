package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	mprisBusPrefix   = "org.mpris.MediaPlayer2."
	mprisObjectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	mprisRootIface   = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
)

// MPRISRegistry discovers MPRIS media players on the D-Bus session bus.
type MPRISRegistry struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// NewMPRISRegistry connects to the session bus.
func NewMPRISRegistry(logger *slog.Logger) (*MPRISRegistry, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: connect session bus: %w", ErrPlayerDiscoveryFailed, err)
	}
	return &MPRISRegistry{conn: conn, logger: logger}, nil
}

// Close closes the session bus connection.
func (r *MPRISRegistry) Close() error {
	return r.conn.Close()
}

// FindAll returns every MPRIS player currently on the bus, in the order the
// bus daemon lists them.
func (r *MPRISRegistry) FindAll() ([]Player, error) {
	var names []string
	if err := r.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("%w: list bus names: %w", ErrPlayerDiscoveryFailed, err)
	}

	var players []Player
	for _, name := range mprisBusNames(names) {
		var owner string
		if err := r.conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner); err != nil {
			// Player went away between ListNames and GetNameOwner
			r.logger.Debug("skipping vanished player", "bus_name", name, "error", err)
			continue
		}
		players = append(players, &mprisPlayer{
			busName: name,
			owner:   owner,
			obj:     r.conn.Object(name, mprisObjectPath),
		})
	}
	return players, nil
}

// mprisBusNames filters bus names down to MPRIS players, keeping their order.
func mprisBusNames(names []string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, mprisBusPrefix) {
			out = append(out, n)
		}
	}
	return out
}

// mprisPlayer is a single MPRIS player reachable on the session bus.
type mprisPlayer struct {
	busName string // well-known name, e.g. org.mpris.MediaPlayer2.vlc
	owner   string // unique connection name, e.g. :1.42
	obj     dbus.BusObject
}

func (p *mprisPlayer) UniqueName() string { return p.owner }

// Identity returns the player's Identity property, falling back to the bus name.
func (p *mprisPlayer) Identity() string {
	v, err := p.obj.GetProperty(mprisRootIface + ".Identity")
	if err != nil {
		return strings.TrimPrefix(p.busName, mprisBusPrefix)
	}
	if s, ok := v.Value().(string); ok && s != "" {
		return s
	}
	return strings.TrimPrefix(p.busName, mprisBusPrefix)
}

func (p *mprisPlayer) PlaybackStatus() (PlaybackStatus, error) {
	v, err := p.obj.GetProperty(mprisPlayerIface + ".PlaybackStatus")
	if err != nil {
		return StatusStopped, fmt.Errorf("%w: %s: %w", ErrStatusQueryFailed, p.busName, err)
	}
	s, ok := v.Value().(string)
	if !ok {
		return StatusStopped, fmt.Errorf("%w: %s: unexpected type %T", ErrStatusQueryFailed, p.busName, v.Value())
	}
	return parsePlaybackStatus(s)
}

func (p *mprisPlayer) PlayPause() error { return p.call("PlayPause") }
func (p *mprisPlayer) Stop() error      { return p.call("Stop") }
func (p *mprisPlayer) Next() error      { return p.call("Next") }
func (p *mprisPlayer) Previous() error  { return p.call("Previous") }

func (p *mprisPlayer) call(method string) error {
	if err := p.obj.Call(mprisPlayerIface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("%w: %s.%s: %w", ErrTransportCommandFailed, p.busName, method, err)
	}
	return nil
}
