package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

// ============================================================================
// mediactl - Command-line IPC Client
// ============================================================================
// Sends media commands to a running mediakeyd started with -ipc-socket.
//
// Usage:
//   mediactl mute
//   mediactl up
//   mediactl next
//   mediactl -socket /run/user/1000/mediakeyd.sock play-pause
// ============================================================================

const defaultSocketPath = "/tmp/mediakeyd.sock"

// requestEnvelope mirrors the daemon's IPC request format.
type requestEnvelope struct {
	Type string `json:"type"`
}

// ipcResponse represents the daemon's response
type ipcResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// commands maps CLI commands (and their aliases) to IPC request types.
var commands = map[string]string{
	"mute":        "toggle_mute",
	"toggle-mute": "toggle_mute",
	"up":          "volume_up",
	"volume-up":   "volume_up",
	"down":        "volume_down",
	"volume-down": "volume_down",
	"next":        "media_next",
	"prev":        "media_previous",
	"previous":    "media_previous",
	"play-pause":  "media_play_pause",
	"toggle":      "media_play_pause",
	"stop":        "media_stop",
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	socketPath := defaultSocketPath
	if env := os.Getenv("MEDIAKEYD_SOCKET"); env != "" {
		socketPath = env
	}

	if len(args) > 0 && (args[0] == "-socket" || args[0] == "--socket") {
		if len(args) < 2 {
			fmt.Fprintln(stderr, "error: -socket requires an argument")
			return 1
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	cmd := strings.ToLower(args[0])
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage(stdout)
		return 0
	}

	reqType, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}

	if err := sendRequest(socketPath, reqType); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "ok")
	return 0
}

func sendRequest(socketPath, reqType string) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := json.Marshal(requestEnvelope{Type: reqType})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	// Line-delimited JSON
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	var response ipcResponse
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if response.Status == "error" {
		return fmt.Errorf("daemon error: %s", response.Error)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `mediactl - Send media commands to mediakeyd via IPC

Usage:
  mediactl [options] <command>

Options:
  -socket PATH    Unix domain socket path (default: $MEDIAKEYD_SOCKET or %s)

Commands:
  mute, toggle-mute       Toggle mute on the default sink
  up, volume-up           Raise volume by one step
  down, volume-down       Lower volume by one step
  play-pause, toggle      Toggle playback on the active player
  next                    Skip to the next track
  prev, previous          Go back to the previous track
  stop                    Stop playback
  help, -h, --help        Show this help message

Examples:
  mediactl mute
  mediactl -socket /run/user/1000/mediakeyd.sock next
`, defaultSocketPath)
}
