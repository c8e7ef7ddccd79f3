// Package session defines recorded input sessions: the event model, the JSON
// codec compatible with existing replay files, and the on-disk library of
// recordings.
package session

import (
	"errors"
	"fmt"
)

// Mouse event types
const (
	EventMoveRelative = "move_relative"
	EventClick        = "click"
	EventScroll       = "scroll"
)

// Keyboard event types
const (
	EventPress   = "press"
	EventRelease = "release"
)

// Mouse buttons as recorded
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Device identifies which input stream an event belongs to.
type Device int

const (
	// DeviceMouse is the pointer stream
	DeviceMouse Device = iota
	// DeviceKeyboard is the key stream
	DeviceKeyboard
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case DeviceMouse:
		return "mouse"
	case DeviceKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// MouseEvent is one recorded pointer event. Timestamps are seconds from the
// start of the recording. Field presence depends on Type: move_relative and
// scroll carry deltas, click carries a button and pressed state.
type MouseEvent struct {
	Type      string  `json:"type"`
	X         int     `json:"x,omitempty"`
	Y         int     `json:"y,omitempty"`
	Button    string  `json:"button,omitempty"`
	Pressed   *bool   `json:"pressed,omitempty"`
	DX        int     `json:"dx,omitempty"`
	DY        int     `json:"dy,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

// KeyboardEvent is one recorded key event. Pressed mirrors Type so files
// written by older recorders that only set one of them still load.
type KeyboardEvent struct {
	Type      string  `json:"type"`
	Key       string  `json:"key"`
	Pressed   bool    `json:"pressed"`
	Timestamp float64 `json:"timestamp"`
}

// Validation errors shared by both event kinds.
var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrBadTimestamp     = errors.New("negative timestamp")
)

// Validate checks a mouse event for structural problems.
func (e MouseEvent) Validate() error {
	if e.Timestamp < 0 {
		return fmt.Errorf("%w: %f", ErrBadTimestamp, e.Timestamp)
	}
	switch e.Type {
	case EventMoveRelative, EventScroll:
		return nil
	case EventClick:
		if e.Button == "" {
			return errors.New("click event missing button")
		}
		if e.Pressed == nil {
			return errors.New("click event missing pressed state")
		}
		return nil
	default:
		return fmt.Errorf("%w: mouse %q", ErrUnknownEventType, e.Type)
	}
}

// Validate checks a keyboard event for structural problems.
func (e KeyboardEvent) Validate() error {
	if e.Timestamp < 0 {
		return fmt.Errorf("%w: %f", ErrBadTimestamp, e.Timestamp)
	}
	switch e.Type {
	case EventPress, EventRelease:
	default:
		return fmt.Errorf("%w: keyboard %q", ErrUnknownEventType, e.Type)
	}
	if e.Key == "" {
		return errors.New("keyboard event missing key")
	}
	return nil
}

// TimelineEvent is one entry in the merged playback timeline. Exactly one of
// Mouse or Keyboard is set, matching Device.
type TimelineEvent struct {
	Device   Device
	Mouse    *MouseEvent
	Keyboard *KeyboardEvent
}

// Timestamp returns the event's offset in seconds from recording start.
func (e TimelineEvent) Timestamp() float64 {
	if e.Device == DeviceMouse {
		return e.Mouse.Timestamp
	}
	return e.Keyboard.Timestamp
}
