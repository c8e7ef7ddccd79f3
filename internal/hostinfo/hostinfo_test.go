package hostinfo

import (
	"runtime"
	"testing"
)

func TestGather(t *testing.T) {
	report := Gather()
	if report.OS != runtime.GOOS {
		t.Errorf("expected OS %q, got %q", runtime.GOOS, report.OS)
	}
	if report.Arch != runtime.GOARCH {
		t.Errorf("expected arch %q, got %q", runtime.GOARCH, report.Arch)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{17179869184, "16.0 GiB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
