package utils

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter defines methods for reporting progress.
type ProgressReporter interface {
	// SetTotal reinitializes the progress bar with the new total count.
	SetTotal(total int)
	// Increment increases the progress by one. Safe for concurrent use.
	Increment()
	Finish()
}

// BarProgressReporter draws a progress bar on a terminal writer.
type BarProgressReporter struct {
	description string
	out         io.Writer
	bar         *progressbar.ProgressBar
}

// NewBarProgressReporter creates a bar writing to out, or to stderr when out is nil.
func NewBarProgressReporter(description string, out io.Writer) *BarProgressReporter {
	if out == nil {
		out = os.Stderr
	}
	reporter := &BarProgressReporter{description: description, out: out}
	reporter.SetTotal(0)
	return reporter
}

func (p *BarProgressReporter) SetTotal(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100e6),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *BarProgressReporter) Increment() {
	_ = p.bar.Add(1)
}

func (p *BarProgressReporter) Finish() {
	_ = p.bar.Finish()
}
