package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for mediakeyd.
//
// Every field has a default, so the daemon runs without a file. Flags are
// applied on top of the file (see FlagOverrides).
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Mixer   MixerConfig   `yaml:"mixer"`
	Keys    KeysConfig    `yaml:"keys,omitempty"`
	IPC     IPCConfig     `yaml:"ipc"`
	Logging LoggingConfig `yaml:"logging"`
}

type InputConfig struct {
	// DeviceDir is where relative device ids are resolved.
	DeviceDir string `yaml:"device_dir"`
	// Device is used when no device id is given on the command line.
	Device string `yaml:"device,omitempty"`
}

type MixerConfig struct {
	Backend     string           `yaml:"backend"` // "pulse" or "camilladsp"
	StepPercent float64          `yaml:"step_percent"`
	CamillaDSP  CamillaDSPConfig `yaml:"camilladsp"`
}

type CamillaDSPConfig struct {
	WsURL     string  `yaml:"ws_url"`
	TimeoutMS int     `yaml:"timeout_ms"`
	MinDB     float64 `yaml:"min_db"`
	MaxDB     float64 `yaml:"max_db"`
}

// KeysConfig binds extra key codes to action names, e.g.
//
//	keys:
//	  bindings:
//	    200: play_pause
type KeysConfig struct {
	Bindings map[uint16]string `yaml:"bindings,omitempty"`
}

type IPCConfig struct {
	// SocketPath enables the control socket when non-empty.
	SocketPath string `yaml:"socket_path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	mixerBackendPulse      = "pulse"
	mixerBackendCamillaDSP = "camilladsp"
)

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go.
func DefaultConfig() Config {
	return Config{
		Input: InputConfig{
			DeviceDir: defaultDeviceDir,
		},
		Mixer: MixerConfig{
			Backend:     mixerBackendPulse,
			StepPercent: defaultStepPercent,
			CamillaDSP: CamillaDSPConfig{
				WsURL:     defaultCamillaWsURL,
				TimeoutMS: defaultReadTimeoutMS,
				MinDB:     defaultCamillaMinDB,
				MaxDB:     defaultCamillaMaxDB,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file on top of DefaultConfig.
//
// Unknown fields are rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return parseConfig(b)
}

func parseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Only whitespace/comments are allowed after the document.
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides holds flag values that were explicitly set on the command
// line. Each override is applied only if its pointer is non-nil.
type FlagOverrides struct {
	DeviceDir *string

	MixerBackend     *string
	StepPercent      *float64
	CamillaWsURL     *string
	CamillaTimeoutMS *int
	CamillaMinDB     *float64
	CamillaMaxDB     *float64

	IPCSocketPath *string
	LogLevel      *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.DeviceDir != nil {
		cfg.Input.DeviceDir = *o.DeviceDir
	}

	if o.MixerBackend != nil {
		cfg.Mixer.Backend = *o.MixerBackend
	}
	if o.StepPercent != nil {
		cfg.Mixer.StepPercent = *o.StepPercent
	}
	if o.CamillaWsURL != nil {
		cfg.Mixer.CamillaDSP.WsURL = *o.CamillaWsURL
	}
	if o.CamillaTimeoutMS != nil {
		cfg.Mixer.CamillaDSP.TimeoutMS = *o.CamillaTimeoutMS
	}
	if o.CamillaMinDB != nil {
		cfg.Mixer.CamillaDSP.MinDB = *o.CamillaMinDB
	}
	if o.CamillaMaxDB != nil {
		cfg.Mixer.CamillaDSP.MaxDB = *o.CamillaMaxDB
	}

	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// Call it after defaults, file and overrides are applied.
func (c *Config) Validate() error {
	if c.Input.DeviceDir == "" {
		return errors.New("input.device_dir must not be empty")
	}

	switch c.Mixer.Backend {
	case mixerBackendPulse:
	case mixerBackendCamillaDSP:
		if c.Mixer.CamillaDSP.WsURL == "" {
			return errors.New("mixer.camilladsp.ws_url must not be empty")
		}
		if c.Mixer.CamillaDSP.TimeoutMS <= 0 {
			return errors.New("mixer.camilladsp.timeout_ms must be > 0")
		}
		if c.Mixer.CamillaDSP.MinDB >= c.Mixer.CamillaDSP.MaxDB {
			return errors.New("mixer.camilladsp.min_db must be < mixer.camilladsp.max_db")
		}
	default:
		return fmt.Errorf("mixer.backend must be %q or %q", mixerBackendPulse, mixerBackendCamillaDSP)
	}
	if c.Mixer.StepPercent <= 0 || c.Mixer.StepPercent > 100 {
		return errors.New("mixer.step_percent must be in (0, 100]")
	}

	for code, name := range c.Keys.Bindings {
		if _, err := ParseAction(name); err != nil {
			return fmt.Errorf("keys.bindings[%d]: %w", code, err)
		}
	}

	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// KeyMap returns the default key bindings with the configured ones on top.
func (c *Config) KeyMap() (KeyMap, error) {
	return DefaultKeyMap().With(c.Keys.Bindings)
}

// ResolveDevicePath turns a device id into a device node path. Absolute
// paths are used verbatim; anything else is looked up in Input.DeviceDir.
func (c *Config) ResolveDevicePath(id string) string {
	id = ExpandPath(strings.TrimSpace(id))
	if filepath.IsAbs(id) {
		return id
	}
	return filepath.Join(ExpandPath(c.Input.DeviceDir), id)
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
