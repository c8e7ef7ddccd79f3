// Package display renders command output tables.
package display

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/m0ric/replaykit/internal/history"
	"github.com/m0ric/replaykit/internal/hostinfo"
	"github.com/m0ric/replaykit/internal/logger"
	"github.com/m0ric/replaykit/internal/session"
)

// Sessions renders the session library listing.
func Sessions(w io.Writer, summaries []session.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Events", "Duration", "Recorded")

	for _, s := range summaries {
		recorded := "unknown"
		if !s.RecordedAt.IsZero() {
			recorded = s.RecordedAt.Format("2006-01-02 15:04:05")
		}
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%d", s.Events),
			logger.FormatDuration(s.Duration),
			recorded,
		})
	}
	return table.Render()
}

// SessionDetail renders one recording as a property table.
func SessionDetail(w io.Writer, name string, rec *session.Recording) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	table.Append([]string{"Name", name})
	if rec.ID != "" {
		table.Append([]string{"ID", rec.ID})
	}
	table.Append([]string{"Mouse events", fmt.Sprintf("%d", len(rec.MouseEvents))})
	table.Append([]string{"Keyboard events", fmt.Sprintf("%d", len(rec.KeyboardEvents))})
	table.Append([]string{"Duration", logger.FormatDuration(rec.Duration())})
	if recorded := rec.RecordedAt(); !recorded.IsZero() {
		table.Append([]string{"Recorded", recorded.Format("2006-01-02 15:04:05")})
	}
	if rec.Metadata.RecordingMode != "" {
		table.Append([]string{"Mode", rec.Metadata.RecordingMode})
	}
	return table.Render()
}

// History renders run history rows.
func History(w io.Writer, runs []history.Run) error {
	table := tablewriter.NewWriter(w)
	table.Header("When", "Kind", "Target", "Result", "Events", "Duration")

	for _, r := range runs {
		result := "ok"
		if !r.Success {
			result = "failed"
			if r.Error != "" {
				result = fmt.Sprintf("failed: %s", truncate(r.Error, 40))
			}
		}
		table.Append([]string{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind,
			r.Target,
			result,
			fmt.Sprintf("%d", r.Events),
			logger.FormatDuration(r.Duration),
		})
	}
	return table.Render()
}

// HostReport renders the doctor's host facts.
func HostReport(w io.Writer, report *hostinfo.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	if report.Hostname != "" {
		table.Append([]string{"Hostname", report.Hostname})
	}
	table.Append([]string{"OS", fmt.Sprintf("%s/%s", report.OS, report.Arch)})
	if report.Platform != "" {
		table.Append([]string{"Platform", report.Platform})
	}

	cpuInfo := fmt.Sprintf("%d threads", report.CPUThreads)
	if report.CPUModel != "" {
		cpuInfo = fmt.Sprintf("%s (%d threads)", report.CPUModel, report.CPUThreads)
	}
	table.Append([]string{"CPU", cpuInfo})

	if report.MemoryTotal > 0 {
		table.Append([]string{"Memory", hostinfo.FormatBytes(report.MemoryTotal)})
	}
	return table.Render()
}

// Toolchain renders the doctor's tool presence checks.
type ToolCheck struct {
	Name    string
	Command string
	Present bool
	Version string
}

func Toolchain(w io.Writer, checks []ToolCheck) error {
	table := tablewriter.NewWriter(w)
	table.Header("Tool", "Command", "Status")

	for _, c := range checks {
		status := "missing"
		if c.Present {
			status = "ok"
			if c.Version != "" {
				status = c.Version
			}
		}
		table.Append([]string{c.Name, c.Command, status})
	}
	return table.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
