package logger

import (
	"bytes"
	"strings"
	"testing"
)

// TestProgressBarPercentage verifies percentage calculation and clamping
func TestProgressBarPercentage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		done  int
		want  int
	}{
		{"zero total", 0, 5, 0},
		{"half", 10, 5, 50},
		{"complete", 10, 10, 100},
		{"overflow clamped", 10, 15, 100},
		{"negative clamped", 10, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.total, 10, false)
			pb.Update(tt.done)
			if got := pb.Percentage(); got != tt.want {
				t.Errorf("Percentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestProgressBarRender verifies the rendered bar shape
func TestProgressBarRender(t *testing.T) {
	pb := NewProgressBar(4, 4, false)
	pb.Update(2)

	got := pb.Render()
	want := "[==  ] 2/4 (50%)"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

// TestProgressBarMinWidth verifies width is clamped to a sane minimum
func TestProgressBarMinWidth(t *testing.T) {
	pb := NewProgressBar(10, 0, false)
	if pb.width != 10 {
		t.Errorf("width = %d, want 10", pb.width)
	}
}

// TestProgressBarColor verifies color codes appear only when enabled
func TestProgressBarColor(t *testing.T) {
	pb := NewProgressBar(2, 4, true)
	pb.Update(1)
	if !strings.Contains(pb.Render(), "\033[36m") {
		t.Error("in-progress bar should be cyan when color enabled")
	}
	pb.Update(2)
	if !strings.Contains(pb.Render(), "\033[32m") {
		t.Error("complete bar should be green when color enabled")
	}

	plain := NewProgressBar(2, 4, false)
	plain.Update(1)
	if strings.Contains(plain.Render(), "\033[") {
		t.Error("bar should carry no escape codes when color disabled")
	}
}

// TestProgressBarDraw verifies in-place redraw and the final newline
func TestProgressBarDraw(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBar(4, 4, false)

	pb.Update(1)
	pb.Draw(&buf)
	pb.Update(4)
	pb.Finish(&buf)

	out := buf.String()
	if strings.Count(out, "\r") != 2 {
		t.Errorf("Draw should return the cursor each time, got %q", out)
	}
	if !strings.HasSuffix(out, "[====] 4/4 (100%)\n") {
		t.Errorf("Finish should end with the complete bar and a newline, got %q", out)
	}
}
