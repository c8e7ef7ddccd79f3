package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ProgressBar renders replay position through a session's event timeline as
// a fixed-width ASCII bar. Safe for concurrent use.
type ProgressBar struct {
	mu          sync.Mutex
	done        int
	total       int
	width       int
	enableColor bool
}

// NewProgressBar creates a bar for total units, width characters wide.
func NewProgressBar(total, width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{total: total, width: width, enableColor: enableColor}
}

// Update sets how many units are done.
func (pb *ProgressBar) Update(done int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.done = done
}

// Percentage returns the progress percentage, clamped to 0-100.
func (pb *ProgressBar) Percentage() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.percentageLocked()
}

func (pb *ProgressBar) percentageLocked() int {
	if pb.total == 0 {
		return 0
	}
	perc := (pb.done * 100) / pb.total
	if perc > 100 {
		return 100
	}
	if perc < 0 {
		return 0
	}
	return perc
}

// Render returns the bar as one line, e.g. "[=====     ] 120/250 (48%)".
// In-progress bars are cyan, complete bars green, when color is enabled.
func (pb *ProgressBar) Render() string {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	perc := pb.percentageLocked()
	filled := (perc * pb.width) / 100
	if filled > pb.width {
		filled = pb.width
	}

	line := fmt.Sprintf("[%s%s] %d/%d (%d%%)",
		strings.Repeat("=", filled), strings.Repeat(" ", pb.width-filled),
		pb.done, pb.total, perc)

	if pb.enableColor {
		c := color.New(color.FgCyan)
		if perc == 100 {
			c = color.New(color.FgGreen)
		}
		c.EnableColor()
		return c.Sprint(line)
	}
	return line
}

// Draw writes the bar in place, returning the cursor to the start of the
// line so the next Draw overwrites it.
func (pb *ProgressBar) Draw(w io.Writer) {
	fmt.Fprintf(w, "\r%s", pb.Render())
}

// Finish draws the final state and moves to the next line.
func (pb *ProgressBar) Finish(w io.Writer) {
	pb.Draw(w)
	fmt.Fprintln(w)
}
