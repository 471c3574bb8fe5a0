// Package ui provides terminal output helpers for the askdocs CLI.
// This file implements the status line shown while a slow request runs.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Status is the state of the tracked request.
type Status int

const (
	StatusPending Status = iota // Not started
	StatusRunning               // Request in flight
	StatusDone                  // Finished successfully
	StatusFailed                // Finished with an error
)

// Progress draws a single status line for one request, such as an upload
// or a question waiting for its answer.
type Progress struct {
	mu          sync.Mutex
	w           io.Writer
	label       string
	status      Status
	isTTY       bool
	start       time.Time
	elapsed     time.Duration
	lastPrinted Status
}

// NewProgress creates a Progress writing to w. In-place redraws are used
// only when w is a terminal.
func NewProgress(w io.Writer, label string) *Progress {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &Progress{w: w, label: label, isTTY: isTTY}
}

// Start marks the request as running.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusRunning
	p.start = time.Now()
	p.render()
}

// Finish records the outcome. A nil err marks the request done.
func (p *Progress) Finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StatusRunning {
		return
	}
	p.elapsed = time.Since(p.start)
	p.status = StatusDone
	if err != nil {
		p.status = StatusFailed
	}
	p.render()
	if p.isTTY {
		fmt.Fprint(p.w, "\n")
	}
}

func (p *Progress) render() {
	if !p.isTTY {
		p.renderPlain()
		return
	}
	// Clear the line and redraw in place.
	fmt.Fprintf(p.w, "\r\033[2K  %s %s  %s", statusIcon(p.status), p.label, p.detail())
}

// renderPlain writes one line per status transition (for CI/piping).
func (p *Progress) renderPlain() {
	if p.status == p.lastPrinted {
		return
	}
	fmt.Fprintln(p.w, formatLinePlain(p.label, p.status, p.elapsed))
	p.lastPrinted = p.status
}

func (p *Progress) detail() string {
	switch p.status {
	case StatusDone:
		return fmt.Sprintf("\033[90m[%s]\033[0m", formatDuration(p.elapsed))
	case StatusFailed:
		return "\033[31m[failed]\033[0m"
	default:
		return "\033[90m[working]\033[0m"
	}
}

func formatLinePlain(label string, status Status, elapsed time.Duration) string {
	var s string
	switch status {
	case StatusRunning:
		s = "RUNNING"
	case StatusDone:
		s = fmt.Sprintf("DONE %s", formatDuration(elapsed))
	case StatusFailed:
		s = "FAILED"
	default:
		s = "PENDING"
	}
	return fmt.Sprintf("[%s] %s", s, label)
}

// statusIcon returns the status icon for the line.
func statusIcon(status Status) string {
	switch status {
	case StatusDone:
		return "\033[32m✅\033[0m" // green checkmark
	case StatusRunning:
		return "\033[33m⏳\033[0m" // yellow hourglass
	case StatusFailed:
		return "\033[31m❌\033[0m" // red X
	default:
		return "\033[90m○\033[0m" // dim circle
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
