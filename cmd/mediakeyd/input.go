package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// RawEvent represents a Linux input event structure
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type RawEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// rawEventSize is the size of one input_event record on 64-bit Linux.
var rawEventSize = binary.Size(RawEvent{})

// Time returns the kernel timestamp of the event.
func (e RawEvent) Time() time.Time {
	return time.Unix(e.Sec, e.Usec*int64(time.Microsecond))
}

// EventSource is the input device the daemon loop drains.
//
// Wait blocks until the device is readable (or Wake is called), ReadAvailable
// returns every event that can be read without blocking.
type EventSource interface {
	Wait() error
	ReadAvailable() ([]RawEvent, error)
	Wake() error
	Close() error
}

// decodeEvents parses a buffer holding zero or more whole input_event records.
// A trailing partial record is reported as an error; the whole records before
// it are still returned.
func decodeEvents(buf []byte) ([]RawEvent, error) {
	n := len(buf) / rawEventSize
	events := make([]RawEvent, 0, n)

	reader := bytes.NewReader(buf[:n*rawEventSize])
	for i := 0; i < n; i++ {
		var ev RawEvent
		if err := binary.Read(reader, binary.LittleEndian, &ev); err != nil {
			return events, fmt.Errorf("decode input event %d: %w", i, err)
		}
		events = append(events, ev)
	}

	if rem := len(buf) % rawEventSize; rem != 0 {
		return events, fmt.Errorf("short input event read: %d trailing bytes", rem)
	}
	return events, nil
}
