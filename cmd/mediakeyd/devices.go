package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

// DeviceInfo describes an input device and the bound keys it can emit.
type DeviceInfo struct {
	Path    string
	Name    string
	ByID    []string // names under the by-id directory that point at Path
	Actions []Action
}

// listDevices enumerates /dev/input/event* and reports which bound keys each
// device advertises.
func listDevices(byIDDir string, keys KeyMap) ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	links := byIDLinks(byIDDir)

	var out []DeviceInfo
	for _, p := range paths {
		info := DeviceInfo{Path: p.Path, Name: p.Name, ByID: links[p.Path]}

		dev, err := evdev.OpenWithFlags(p.Path, os.O_RDONLY)
		if err == nil {
			info.Actions = supportedActions(capableKeyCodes(dev), keys)
			dev.Close()
		}
		out = append(out, info)
	}
	return out, nil
}

// checkDeviceKeys opens path and returns the bound actions the device
// advertises in its EV_KEY capabilities.
func checkDeviceKeys(path string, keys KeyMap) ([]Action, string, error) {
	dev, err := evdev.OpenWithFlags(path, os.O_RDONLY)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer dev.Close()

	name, err := dev.Name()
	if err != nil {
		name = filepath.Base(path)
	}
	return supportedActions(capableKeyCodes(dev), keys), name, nil
}

func capableKeyCodes(dev *evdev.InputDevice) []uint16 {
	caps := dev.CapableEvents(evdev.EV_KEY)
	codes := make([]uint16, 0, len(caps))
	for _, c := range caps {
		codes = append(codes, uint16(c))
	}
	return codes
}

// supportedActions returns the actions whose key codes appear in codes,
// ordered by key code.
func supportedActions(codes []uint16, keys KeyMap) []Action {
	has := make(map[uint16]bool, len(codes))
	for _, c := range codes {
		has[c] = true
	}

	var out []Action
	for _, code := range keys.Codes() {
		if has[code] {
			out = append(out, keys[code])
		}
	}
	return out
}

// byIDLinks maps device nodes to the symlink names in dir that resolve to them.
func byIDLinks(dir string) map[string][]string {
	links := make(map[string][]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return links
	}
	for _, e := range entries {
		target, err := filepath.EvalSymlinks(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		links[target] = append(links[target], e.Name())
	}
	for _, names := range links {
		sort.Strings(names)
	}
	return links
}

func printDevices(w io.Writer, devices []DeviceInfo) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "no input devices found (are you in the 'input' group?)")
		return
	}
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\n", d.Path, d.Name)
		for _, id := range d.ByID {
			fmt.Fprintf(w, "\tid: %s\n", id)
		}
		if len(d.Actions) == 0 {
			fmt.Fprintln(w, "\tmedia keys: none")
			continue
		}
		names := make([]string, len(d.Actions))
		for i, a := range d.Actions {
			names[i] = a.String()
		}
		fmt.Fprintf(w, "\tmedia keys: %s\n", strings.Join(names, ", "))
	}
}

// warnIfNoMediaKeys logs when the opened device advertises none of the bound keys.
func warnIfNoMediaKeys(path string, keys KeyMap, logger *slog.Logger) {
	actions, name, err := checkDeviceKeys(path, keys)
	if err != nil {
		logger.Debug("capability check skipped", "device", path, "error", err)
		return
	}
	if len(actions) == 0 {
		logger.Warn("device advertises no bound media keys", "device", path, "name", name)
		return
	}
	logger.Debug("device capabilities", "device", path, "name", name, "keys", len(actions))
}
