package suite

import "time"

// Stage is a step of a test case.
type Stage string

const (
	StageCompile Stage = "compile"
	StageRun     Stage = "run"
	StageCompare Stage = "compare"
)

// Status captures progress within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one case (Case is its display name).
type Event struct {
	Case    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks are called from worker
// goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}

// MultiSink fans events out to every non-nil sink in order.
type MultiSink []ProgressSink

func (m MultiSink) OnEvent(evt Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(evt)
		}
	}
}
