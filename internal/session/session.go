package session

import (
	"fmt"
	"sort"
	"time"
)

// RecordingModeRelative marks recordings whose mouse stream is relative
// deltas rather than absolute positions. This is the only mode the recorder
// produces.
const RecordingModeRelative = "relative_mouse"

// recordDateLayout matches the ISO timestamps existing replay files carry.
const recordDateLayout = "2006-01-02T15:04:05.999999"

// Metadata summarizes a recording. Counts are filled on save.
type Metadata struct {
	MouseEventsCount    int    `json:"mouse_events_count"`
	KeyboardEventsCount int    `json:"keyboard_events_count"`
	RecordingMode       string `json:"recording_mode"`
}

// Recording is a full recorded session. The JSON layout matches the files
// the original recorder wrote, so existing replays load unchanged; the ID
// field is new and absent from legacy files.
type Recording struct {
	ID             string          `json:"id,omitempty"`
	MouseEvents    []MouseEvent    `json:"mouse_events"`
	KeyboardEvents []KeyboardEvent `json:"keyboard_events"`
	TotalDuration  float64         `json:"total_duration"`
	RecordDate     string          `json:"record_date"`
	Metadata       Metadata        `json:"metadata"`
}

// EventCount returns the total number of events across both streams.
func (r *Recording) EventCount() int {
	return len(r.MouseEvents) + len(r.KeyboardEvents)
}

// Duration returns the recording length as a time.Duration.
func (r *Recording) Duration() time.Duration {
	return time.Duration(r.TotalDuration * float64(time.Second))
}

// RecordedAt parses the recording date. The zero time is returned when the
// field is absent or unparseable, which legacy files occasionally are.
func (r *Recording) RecordedAt() time.Time {
	for _, layout := range []string{recordDateLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, r.RecordDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SetRecordedAt stores t in the on-disk date format.
func (r *Recording) SetRecordedAt(t time.Time) {
	r.RecordDate = t.Format(recordDateLayout)
}

// Timeline returns both event streams merged into a single slice ordered by
// timestamp. The sort is stable with mouse events listed first, so ties
// resolve the same way the original player resolved them.
func (r *Recording) Timeline() []TimelineEvent {
	timeline := make([]TimelineEvent, 0, r.EventCount())
	for i := range r.MouseEvents {
		timeline = append(timeline, TimelineEvent{Device: DeviceMouse, Mouse: &r.MouseEvents[i]})
	}
	for i := range r.KeyboardEvents {
		timeline = append(timeline, TimelineEvent{Device: DeviceKeyboard, Keyboard: &r.KeyboardEvents[i]})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp() < timeline[j].Timestamp()
	})
	return timeline
}

// Validate checks the recording for structural problems: bad events,
// out-of-order streams, and a negative duration.
func (r *Recording) Validate() error {
	if r.TotalDuration < 0 {
		return fmt.Errorf("total_duration must be >= 0, got %f", r.TotalDuration)
	}

	prev := -1.0
	for i, ev := range r.MouseEvents {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("mouse event %d: %w", i, err)
		}
		if ev.Timestamp < prev {
			return fmt.Errorf("mouse event %d: timestamp %f before previous %f", i, ev.Timestamp, prev)
		}
		prev = ev.Timestamp
	}

	prev = -1.0
	for i, ev := range r.KeyboardEvents {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("keyboard event %d: %w", i, err)
		}
		if ev.Timestamp < prev {
			return fmt.Errorf("keyboard event %d: timestamp %f before previous %f", i, ev.Timestamp, prev)
		}
		prev = ev.Timestamp
	}

	return nil
}
