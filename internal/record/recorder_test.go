package record

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m0ric/replaykit/internal/session"
)

func offset(v float64) *float64 { return &v }

func TestRecorderMoveDeltas(t *testing.T) {
	r := NewRecorder()
	r.Start()

	r.Handle(Sample{Kind: SampleMouseMove, X: 100, Y: 200, Offset: offset(0.0)})
	r.Handle(Sample{Kind: SampleMouseMove, X: 110, Y: 195, Offset: offset(0.1)})
	r.Handle(Sample{Kind: SampleMouseMove, X: 110, Y: 195, Offset: offset(0.2)})
	r.Handle(Sample{Kind: SampleMouseMove, X: 108, Y: 200, Offset: offset(0.3)})

	rec := r.Stop()
	if rec == nil {
		t.Fatal("expected a recording")
	}

	// First position seeds the tracker, duplicate position is dropped.
	if len(rec.MouseEvents) != 2 {
		t.Fatalf("expected 2 move events, got %d", len(rec.MouseEvents))
	}
	first := rec.MouseEvents[0]
	if first.Type != session.EventMoveRelative || first.DX != 10 || first.DY != -5 {
		t.Errorf("unexpected first delta: %+v", first)
	}
	second := rec.MouseEvents[1]
	if second.DX != -2 || second.DY != 5 {
		t.Errorf("unexpected second delta: %+v", second)
	}
}

func TestRecorderFiltersReservedHotkeys(t *testing.T) {
	r := NewRecorder()
	r.Start()

	r.Handle(Sample{Kind: SampleKeyPress, Key: "f9", Offset: offset(0.0)})
	r.Handle(Sample{Kind: SampleKeyPress, Key: "a", Offset: offset(0.1)})
	r.Handle(Sample{Kind: SampleKeyRelease, Key: "a", Offset: offset(0.2)})
	r.Handle(Sample{Kind: SampleKeyRelease, Key: "f10", Offset: offset(0.3)})

	rec := r.Stop()
	if len(rec.KeyboardEvents) != 2 {
		t.Fatalf("expected 2 keyboard events, got %d", len(rec.KeyboardEvents))
	}
	for _, ev := range rec.KeyboardEvents {
		if ev.Key != "a" {
			t.Errorf("reserved key leaked into recording: %q", ev.Key)
		}
	}
}

func TestRecorderLifecycle(t *testing.T) {
	r := NewRecorder()

	if rec := r.Stop(); rec != nil {
		t.Error("Stop while idle should return nil")
	}

	// Samples before Start are discarded.
	r.Handle(Sample{Kind: SampleKeyPress, Key: "a", Offset: offset(0.0)})

	r.Start()
	if !r.Recording() {
		t.Fatal("expected recorder to be recording")
	}
	r.Start() // no-op
	r.Handle(Sample{Kind: SampleKeyPress, Key: "b", Offset: offset(0.1)})

	rec := r.Stop()
	if r.Recording() {
		t.Error("expected recorder to be idle after Stop")
	}
	if len(rec.KeyboardEvents) != 1 || rec.KeyboardEvents[0].Key != "b" {
		t.Fatalf("unexpected keyboard events: %+v", rec.KeyboardEvents)
	}

	// Samples after Stop are discarded.
	r.Handle(Sample{Kind: SampleKeyPress, Key: "c", Offset: offset(0.2)})
}

func TestRecorderDurationCoversLastEvent(t *testing.T) {
	fixed := time.Date(2024, 11, 25, 18, 3, 41, 0, time.UTC)
	r := NewRecorder()
	r.now = func() time.Time { return fixed }

	r.Start()
	r.Handle(Sample{Kind: SampleMouseScroll, DY: 1, Offset: offset(2.5)})
	rec := r.Stop()

	if rec.TotalDuration != 2.5 {
		t.Errorf("expected duration 2.5, got %v", rec.TotalDuration)
	}
	if rec.RecordedAt().IsZero() {
		t.Error("expected a record date")
	}
	if rec.Metadata.RecordingMode != session.RecordingModeRelative {
		t.Errorf("unexpected recording mode %q", rec.Metadata.RecordingMode)
	}
}

func TestJSONLSource(t *testing.T) {
	script := strings.Join([]string{
		`{"kind":"move","x":10,"y":20,"offset":0.0}`,
		``,
		`{"kind":"move","x":15,"y":25,"offset":0.1}`,
		`{"kind":"click","button":"left","pressed":true,"offset":0.2}`,
		`{"kind":"click","button":"left","pressed":false,"offset":0.3}`,
		`{"kind":"scroll","dy":-1,"offset":0.4}`,
		`{"kind":"press","key":"enter","offset":0.5}`,
		`{"kind":"release","key":"enter","offset":0.6}`,
	}, "\n")

	r := NewRecorder()
	r.Start()

	src := NewJSONLSource(strings.NewReader(script))
	if err := src.Run(context.Background(), r.Handle); err != nil {
		t.Fatalf("source failed: %v", err)
	}

	rec := r.Stop()
	if got := len(rec.MouseEvents); got != 4 {
		t.Errorf("expected 4 mouse events, got %d", got)
	}
	if got := len(rec.KeyboardEvents); got != 2 {
		t.Errorf("expected 2 keyboard events, got %d", got)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("recording should validate: %v", err)
	}
}

func TestJSONLSourceBadInput(t *testing.T) {
	cases := map[string]string{
		"malformed json": `{"kind":`,
		"unknown kind":   `{"kind":"teleport"}`,
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			src := NewJSONLSource(strings.NewReader(line))
			err := src.Run(context.Background(), func(Sample) {})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), "line 1") {
				t.Errorf("error should name the line: %v", err)
			}
		})
	}
}

func TestJSONLSourceCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewJSONLSource(strings.NewReader(`{"kind":"press","key":"a"}`))
	err := src.Run(ctx, func(Sample) { t.Error("handler should not run") })
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
