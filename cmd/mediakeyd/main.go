package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "mediakeyd v%s\n", version)
	fmt.Fprintln(w, "Media key daemon for PulseAudio/CamillaDSP volume and MPRIS players")
}

func printUsage(w io.Writer) {
	printVersion(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  mediakeyd [OPTIONS] <device-id>")
	fmt.Fprintln(w, "  mediakeyd -list-devices")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DESCRIPTION:")
	fmt.Fprintln(w, "  Reads media keys from a Linux input device and forwards them:")
	fmt.Fprintln(w, "  mute and volume go to the audio mixer, play/pause, next, previous")
	fmt.Fprintln(w, "  and stop go to the active MPRIS media player.")
	fmt.Fprintf(w, "  <device-id> is a name under %s or an absolute device path.\n", defaultDeviceDir)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "  -config string")
	fmt.Fprintln(w, "        YAML config file (optional)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -device-dir string")
	fmt.Fprintf(w, "        Directory relative device ids are resolved in (default %q)\n", defaultDeviceDir)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -mixer string")
	fmt.Fprintf(w, "        Mixer backend: %s|%s (default %q)\n", mixerBackendPulse, mixerBackendCamillaDSP, mixerBackendPulse)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -step float")
	fmt.Fprintf(w, "        Volume change per key press in percent (default %.1f)\n", defaultStepPercent)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -camilladsp-ws-url string")
	fmt.Fprintf(w, "        CamillaDSP websocket URL (default %q)\n", defaultCamillaWsURL)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -camilladsp-ws-timeout-ms int")
	fmt.Fprintf(w, "        Timeout for websocket responses in ms (default %d)\n", defaultReadTimeoutMS)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -camilladsp-min-db float")
	fmt.Fprintf(w, "        Volume at 0%% in dB (default %.1f)\n", defaultCamillaMinDB)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -camilladsp-max-db float")
	fmt.Fprintf(w, "        Volume at 100%% in dB (default %.1f)\n", defaultCamillaMaxDB)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -ipc-socket string")
	fmt.Fprintln(w, "        Unix domain socket for mediactl (disabled when empty)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -log-level string")
	fmt.Fprintln(w, "        Log level: error, warn, info, debug (default \"info\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -list-devices")
	fmt.Fprintln(w, "        List input devices and the media keys they support, then exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -version")
	fmt.Fprintln(w, "        Print version and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -help")
	fmt.Fprintln(w, "        Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  mediakeyd usb-Logitech_USB_Receiver-event-kbd")
	fmt.Fprintln(w, "  mediakeyd -mixer camilladsp -ipc-socket /run/mediakeyd.sock /dev/input/event3")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "NOTES:")
	fmt.Fprintln(w, "  - Requires read access to the input device (add user to the 'input' group)")
	fmt.Fprintln(w, "  - Must run inside the user session so the D-Bus session bus is reachable")
	fmt.Fprintln(w)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without os.Exit, returning the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mediakeyd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	var (
		configPath  = fs.String("config", "", "YAML config file")
		deviceDir   = fs.String("device-dir", defaultDeviceDir, "Directory relative device ids are resolved in")
		mixer       = fs.String("mixer", mixerBackendPulse, "Mixer backend: pulse|camilladsp")
		step        = fs.Float64("step", defaultStepPercent, "Volume change per key press (%)")
		camillaURL  = fs.String("camilladsp-ws-url", defaultCamillaWsURL, "CamillaDSP websocket URL")
		camillaTO   = fs.Int("camilladsp-ws-timeout-ms", defaultReadTimeoutMS, "Timeout in milliseconds for websocket responses")
		camillaMin  = fs.Float64("camilladsp-min-db", defaultCamillaMinDB, "Volume at 0% in dB")
		camillaMax  = fs.Float64("camilladsp-max-db", defaultCamillaMaxDB, "Volume at 100% in dB")
		ipcSocket   = fs.String("ipc-socket", "", "Unix domain socket path for IPC (disabled when empty)")
		logLevelStr = fs.String("log-level", "info", "Log level: error, warn, info, debug")
		listDevs    = fs.Bool("list-devices", false, "List input devices and exit")
		showVersion = fs.Bool("version", false, "Print version and exit")
		showHelp    = fs.Bool("help", false, "Print help message")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showHelp {
		printUsage(stdout)
		return 0
	}
	if *showVersion {
		printVersion(stdout)
		return 0
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		cfg = loaded
	}

	// Only flags given on the command line override the file.
	var o FlagOverrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device-dir":
			o.DeviceDir = deviceDir
		case "mixer":
			o.MixerBackend = mixer
		case "step":
			o.StepPercent = step
		case "camilladsp-ws-url":
			o.CamillaWsURL = camillaURL
		case "camilladsp-ws-timeout-ms":
			o.CamillaTimeoutMS = camillaTO
		case "camilladsp-min-db":
			o.CamillaMinDB = camillaMin
		case "camilladsp-max-db":
			o.CamillaMaxDB = camillaMax
		case "ipc-socket":
			o.IPCSocketPath = ipcSocket
		case "log-level":
			o.LogLevel = logLevelStr
		}
	})
	o.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	keys, err := cfg.KeyMap()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	if *listDevs {
		devices, err := listDevices(ExpandPath(cfg.Input.DeviceDir), keys)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		printDevices(stdout, devices)
		return 0
	}

	deviceID := cfg.Input.Device
	if fs.NArg() > 0 {
		deviceID = fs.Arg(0)
	}
	if deviceID == "" {
		fmt.Fprintln(stdout, "usage: mediakeyd [OPTIONS] <device-id>")
		return 0
	}

	logLevel, _ := parseLogLevel(cfg.Logging.Level) // checked by Validate
	logger := setupLogger(logLevel)

	if err := runDaemon(cfg, cfg.ResolveDevicePath(deviceID), keys, logger); err != nil {
		logger.Error("mediakeyd failed", "error", err)
		return 1
	}
	return 0
}

// runDaemon wires the collaborators together and blocks until SIGINT/SIGTERM
// or a fatal input error.
func runDaemon(cfg Config, devicePath string, keys KeyMap, logger *slog.Logger) error {
	src, err := openEpollSource(devicePath)
	if err != nil {
		if errors.Is(err, ErrDeviceOpenFailed) {
			logger.Error("failed to open input device", "device", devicePath, "error", err, "tip", "add user to 'input' group")
		}
		return err
	}
	defer src.Close()

	warnIfNoMediaKeys(devicePath, keys, logger)

	// The mixer and the player bus are optional at startup: without them the
	// affected actions fail individually and are logged.
	mixer, err := newMixer(cfg.Mixer, logger)
	if err != nil {
		logger.Warn("audio mixer unavailable", "backend", cfg.Mixer.Backend, "error", err)
		mixer = nil
	} else {
		defer mixer.Close()
	}

	var players PlayerRegistry
	if reg, err := NewMPRISRegistry(logger); err != nil {
		logger.Warn("media player bus unavailable", "error", err)
	} else {
		players = reg
		defer reg.Close()
	}

	disp := NewDispatcher(mixer, players, cfg.Mixer.StepPercent, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runLoop(gctx, src, disp, keys, logger)
	})

	if cfg.IPC.SocketPath != "" {
		socketPath := ExpandPath(cfg.IPC.SocketPath)
		g.Go(func() error {
			return runIPCServer(gctx, socketPath, disp, logger)
		})
	}

	// Wake the input loop once anything ends the group (signal or failure).
	g.Go(func() error {
		<-gctx.Done()
		if err := src.Wake(); err != nil {
			logger.Warn("failed to wake input loop", "error", err)
		}
		return nil
	})

	logger.Info("listening",
		"device", devicePath,
		"mixer", cfg.Mixer.Backend,
		"step_pct", cfg.Mixer.StepPercent,
		"ipc", cfg.IPC.SocketPath,
		"keys", len(keys))

	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("shutting down")
	}
	return err
}

// newMixer connects to the configured mixer backend.
func newMixer(cfg MixerConfig, logger *slog.Logger) (Mixer, error) {
	switch cfg.Backend {
	case mixerBackendCamillaDSP:
		client, err := NewCamillaDSPClient(cfg.CamillaDSP.WsURL, logger, cfg.CamillaDSP.TimeoutMS)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMixerUnavailable, err)
		}
		return NewCamillaMixer(client, cfg.CamillaDSP.MinDB, cfg.CamillaDSP.MaxDB), nil
	default:
		m, err := NewPulseMixer(logger)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}
