// Package hostinfo gathers basic facts about the machine for doctor output.
package hostinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Report is a snapshot of the host. Fields that could not be gathered keep
// their zero values; probing failures never fail a report.
type Report struct {
	Hostname    string
	OS          string
	Platform    string
	Arch        string
	CPUModel    string
	CPUThreads  int
	MemoryTotal uint64
}

// Gather collects host facts. Each probe failing independently leaves its
// fields zeroed.
func Gather() *Report {
	report := &Report{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if info, err := host.Info(); err == nil {
		report.Hostname = info.Hostname
		report.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		report.CPUModel = infos[0].ModelName
	}
	if count, err := cpu.Counts(true); err == nil {
		report.CPUThreads = count
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		report.MemoryTotal = vmem.Total
	}

	return report
}

// FormatBytes renders a byte count in binary units.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
