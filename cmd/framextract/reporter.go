package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"framextract/internal/extraction"
)

// newNarrationReporter prints each successful read and write.
func newNarrationReporter(out io.Writer) extraction.Reporter {
	return extraction.ReporterFunc(func(e extraction.Event) {
		switch e.Kind {
		case extraction.EventFrameDecoded:
			fmt.Fprintf(out, "Frame %d extracted successfully from %s...\n", e.Frame, e.Video)
		case extraction.EventFrameWritten:
			fmt.Fprintf(out, "...file %s successfully created.\n\n", filepath.Base(e.Path))
		}
	})
}

// progressReporter drives a terminal progress bar sized to the planned
// frame count.
type progressReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out}
}

func (p *progressReporter) Report(e extraction.Event) {
	switch e.Kind {
	case extraction.EventRunStarted:
		p.bar = progressbar.NewOptions(e.Total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("Extracting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		)
	case extraction.EventGroupStarted:
		if p.bar != nil {
			p.bar.Describe(fmt.Sprintf("%s %s", e.Channel, e.Video))
		}
	case extraction.EventFrameWritten:
		if p.bar != nil {
			_ = p.bar.Add(1)
		}
	}
}

func (p *progressReporter) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
