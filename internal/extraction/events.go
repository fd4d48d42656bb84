package extraction

import "framextract/internal/annotation"

// EventKind classifies progress events.
type EventKind int

const (
	EventRunStarted EventKind = iota + 1
	EventGroupStarted
	EventDuplicatesDropped
	EventFrameDecoded
	EventFrameWritten
	EventGroupFinished
)

// Event describes a step of a run for narration and progress display. Events
// carry no data that affects output.
type Event struct {
	Kind    EventKind
	Channel annotation.Channel
	Video   string
	Frame   int
	Path    string
	Dropped []int
	// Done and Total count frame requests across the whole run.
	Done  int
	Total int
}

// Reporter receives events synchronously from the run.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

type nopReporter struct{}

func (nopReporter) Report(Event) {}
