// Package record turns raw input captures into session recordings. Platform
// capture hooks live behind the Source interface; the recorder itself only
// deals in samples.
package record

import (
	"sync"
	"time"

	"github.com/m0ric/replaykit/internal/session"
)

// SampleKind identifies a raw capture sample.
type SampleKind int

const (
	// SampleMouseMove is an absolute pointer position report
	SampleMouseMove SampleKind = iota
	// SampleMouseClick is a button press or release
	SampleMouseClick
	// SampleMouseScroll is a wheel movement
	SampleMouseScroll
	// SampleKeyPress is a key going down
	SampleKeyPress
	// SampleKeyRelease is a key coming up
	SampleKeyRelease
)

// Sample is one raw capture delivered by a Source. Mouse positions are
// absolute screen coordinates; the recorder converts them to relative
// deltas. Offset, when set, is the capture time in seconds from the start
// of the source and takes precedence over the recorder's own clock.
type Sample struct {
	Kind    SampleKind
	X, Y    int
	Button  string
	Pressed bool
	DX, DY  int
	Key     string
	Offset  *float64
}

// reservedKeys are the recorder's own start/stop hotkeys. They control the
// recorder and must never appear in the recorded stream, exactly as the
// original tool filtered F9/F10.
var reservedKeys = map[string]bool{
	"f9":  true,
	"f10": true,
}

// Recorder accumulates samples into a session recording. Sources may
// deliver from their own goroutines, so all state is mutex-guarded.
type Recorder struct {
	mu             sync.Mutex
	recording      bool
	start          time.Time
	mouseEvents    []session.MouseEvent
	keyboardEvents []session.KeyboardEvent
	lastX, lastY   int
	hasLast        bool

	// now is the clock, swappable in tests.
	now func() time.Time
}

// NewRecorder creates an idle Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Start begins a new recording. Starting while already recording is a no-op.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return
	}

	r.mouseEvents = nil
	r.keyboardEvents = nil
	r.hasLast = false
	r.start = r.now()
	r.recording = true
}

// Recording reports whether a recording is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Handle ingests one sample. Samples arriving while not recording are
// discarded.
func (r *Recorder) Handle(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}

	ts := r.timestampLocked(s)

	switch s.Kind {
	case SampleMouseMove:
		r.handleMoveLocked(s, ts)
	case SampleMouseClick:
		pressed := s.Pressed
		r.mouseEvents = append(r.mouseEvents, session.MouseEvent{
			Type:      session.EventClick,
			Button:    s.Button,
			Pressed:   &pressed,
			Timestamp: ts,
		})
	case SampleMouseScroll:
		r.mouseEvents = append(r.mouseEvents, session.MouseEvent{
			Type:      session.EventScroll,
			DX:        s.DX,
			DY:        s.DY,
			Timestamp: ts,
		})
	case SampleKeyPress, SampleKeyRelease:
		if reservedKeys[s.Key] {
			return
		}
		eventType := session.EventPress
		pressed := true
		if s.Kind == SampleKeyRelease {
			eventType = session.EventRelease
			pressed = false
		}
		r.keyboardEvents = append(r.keyboardEvents, session.KeyboardEvent{
			Type:      eventType,
			Key:       s.Key,
			Pressed:   pressed,
			Timestamp: ts,
		})
	}
}

// handleMoveLocked converts an absolute position into a relative delta.
// The first position only seeds the tracker and zero deltas are dropped.
func (r *Recorder) handleMoveLocked(s Sample, ts float64) {
	if r.hasLast {
		dx := s.X - r.lastX
		dy := s.Y - r.lastY
		if dx != 0 || dy != 0 {
			r.mouseEvents = append(r.mouseEvents, session.MouseEvent{
				Type:      session.EventMoveRelative,
				DX:        dx,
				DY:        dy,
				Timestamp: ts,
			})
		}
	}
	r.lastX, r.lastY = s.X, s.Y
	r.hasLast = true
}

// timestampLocked picks the sample's own offset when present, otherwise the
// wall-clock offset from Start.
func (r *Recorder) timestampLocked(s Sample) float64 {
	if s.Offset != nil {
		return *s.Offset
	}
	return r.now().Sub(r.start).Seconds()
}

// Stop finishes the recording and returns it. Stopping while idle returns
// nil. The recording's date is stamped with the current time and its total
// duration spans from Start to the last event or Stop, whichever the source
// dictated.
func (r *Recorder) Stop() *session.Recording {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return nil
	}
	r.recording = false

	total := r.now().Sub(r.start).Seconds()
	// Offset-driven sources can outrun the wall clock; never truncate the
	// recording below its last event.
	if last := r.lastTimestampLocked(); last > total {
		total = last
	}

	rec := &session.Recording{
		MouseEvents:    r.mouseEvents,
		KeyboardEvents: r.keyboardEvents,
		TotalDuration:  total,
		Metadata: session.Metadata{
			RecordingMode: session.RecordingModeRelative,
		},
	}
	rec.SetRecordedAt(r.now())

	r.mouseEvents = nil
	r.keyboardEvents = nil
	return rec
}

func (r *Recorder) lastTimestampLocked() float64 {
	last := 0.0
	if n := len(r.mouseEvents); n > 0 {
		last = r.mouseEvents[n-1].Timestamp
	}
	if n := len(r.keyboardEvents); n > 0 && r.keyboardEvents[n-1].Timestamp > last {
		last = r.keyboardEvents[n-1].Timestamp
	}
	return last
}
