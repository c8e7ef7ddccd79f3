package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/m0ric/replaykit/internal/history"
	"github.com/m0ric/replaykit/internal/hostinfo"
	"github.com/m0ric/replaykit/internal/session"
)

func TestSessionsTable(t *testing.T) {
	var buf bytes.Buffer
	err := Sessions(&buf, []session.Summary{
		{Name: "gather_loop", Events: 120, Duration: 8 * time.Second,
			RecordedAt: time.Date(2024, 11, 25, 18, 3, 41, 0, time.UTC)},
		{Name: "deposit", Events: 12, Duration: 900 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"gather_loop", "120", "2024-11-25 18:03:41", "deposit", "unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	err := History(&buf, []history.Run{
		{Kind: "play", Target: "gather_loop", Success: true, Events: 120,
			Duration: 8 * time.Second, CreatedAt: time.Now()},
		{Kind: "playbook", Target: "morning.md", Success: false,
			Error: "step 2 (walk_to_bank): session not found", CreatedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "gather_loop") || !strings.Contains(out, "failed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestToolchainTable(t *testing.T) {
	var buf bytes.Buffer
	err := Toolchain(&buf, []ToolCheck{
		{Name: "runtime", Command: "python3 --version", Present: true, Version: "Python 3.12.1"},
		{Name: "package manager", Command: "python3 -m pip --version", Present: false},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Python 3.12.1") || !strings.Contains(out, "missing") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHostReportTable(t *testing.T) {
	var buf bytes.Buffer
	err := HostReport(&buf, &hostinfo.Report{
		OS: "linux", Arch: "amd64", CPUThreads: 8, MemoryTotal: 17179869184,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "linux/amd64") || !strings.Contains(out, "16.0 GiB") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 40); got != "short" {
		t.Errorf("unexpected truncation: %q", got)
	}
	long := strings.Repeat("x", 50)
	got := truncate(long, 40)
	if len(got) != 40 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncation: %q", got)
	}
}
