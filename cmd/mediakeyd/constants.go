package main

// Linux input event types and codes (from <linux/input.h>)
const (
	EV_SYN = 0x00
	EV_KEY = 0x01

	KEY_MUTE         = 113
	KEY_VOLUMEDOWN   = 114
	KEY_VOLUMEUP     = 115
	KEY_NEXTSONG     = 163
	KEY_PLAYPAUSE    = 164
	KEY_PREVIOUSSONG = 165
	KEY_STOPCD       = 166
)

// Input event value constants
const (
	evValueRelease = 0
	evValuePress   = 1
	evValueRepeat  = 2
)

const (
	defaultDeviceDir   = "/dev/input/by-id"
	defaultStepPercent = 5.0 // Volume change per key press (%)

	// CamillaDSP backend defaults
	defaultCamillaWsURL     = "ws://127.0.0.1:1234"
	defaultReadTimeoutMS    = 500 // Timeout for reading websocket responses (ms)
	defaultCamillaMinDB     = -65.0
	defaultCamillaMaxDB     = 0.0
	defaultMaxEventsPerRead = 64 // input_event records drained per read(2)
)
