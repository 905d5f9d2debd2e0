// Package observ measures the phases of a conformance test case.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration and outcome note of one step (compile, run, compare).
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the phases of a single case. It is not safe for concurrent use;
// every case owns its own Timer.
type Timer struct {
	phases []Phase
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 3)} }

// Begin starts a phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes the phase at idx.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Duration returns the recorded duration of the named phase.
func (t *Timer) Duration(name string) time.Duration {
	for _, p := range t.phases {
		if p.Name == name {
			return p.Dur
		}
	}
	return 0
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all phases of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns the phases with their total.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: toMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = toMillis(total)
	return report
}

// Summary renders the report as one line, e.g. "compile 12.0 ms, run 3.1 ms".
func (r Report) Summary() string {
	parts := make([]string, 0, len(r.Phases))
	for _, p := range r.Phases {
		parts = append(parts, fmt.Sprintf("%s %.1f ms", p.Name, p.DurationMS))
	}
	return strings.Join(parts, ", ")
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
