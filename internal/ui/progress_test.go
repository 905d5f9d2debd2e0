package ui

import (
	"errors"
	"strings"
	"testing"

	"latrt/internal/suite"
)

func newTestModel(cases ...string) *progressModel {
	return NewProgressModel("checking", cases, make(chan suite.Event)).(*progressModel)
}

func TestApplyEventTracksStages(t *testing.T) {
	m := newTestModel("good/a.lat", "bad/b.lat")

	m.applyEvent(suite.Event{Case: "good/a.lat", Stage: suite.StageRun, Status: suite.StatusWorking})
	if got := m.items[0].status; got != "running" {
		t.Fatalf("status = %q, want running", got)
	}
	m.applyEvent(suite.Event{Case: "good/a.lat", Stage: suite.StageCompare, Status: suite.StatusDone})
	m.applyEvent(suite.Event{Case: "bad/b.lat", Stage: suite.StageCompile, Status: suite.StatusError, Err: errors.New("boom")})
	// late events for a finished case are ignored
	m.applyEvent(suite.Event{Case: "bad/b.lat", Stage: suite.StageRun, Status: suite.StatusWorking})
	m.applyEvent(suite.Event{Case: "unknown.lat", Stage: suite.StageRun, Status: suite.StatusDone})

	if m.passed != 1 || m.failed != 1 {
		t.Fatalf("passed=%d failed=%d, want 1/1", m.passed, m.failed)
	}
	if m.items[0].status != "ok" || m.items[1].status != "error" {
		t.Fatalf("statuses = %q, %q", m.items[0].status, m.items[1].status)
	}
}

func TestViewListsCases(t *testing.T) {
	m := newTestModel("good/hello.lat")
	m.applyEvent(suite.Event{Case: "good/hello.lat", Stage: suite.StageCompile, Status: suite.StatusWorking})
	view := m.View()
	if !strings.Contains(view, "good/hello.lat") || !strings.Contains(view, "compiling") {
		t.Fatalf("view missing case row:\n%s", view)
	}
	if !strings.Contains(view, "0 ok, 0 failed, 1 total") {
		t.Fatalf("view missing counters:\n%s", view)
	}
}

func TestVisiblePrefersFailuresAndPending(t *testing.T) {
	names := make([]string, maxVisible+5)
	for i := range names {
		names[i] = strings.Repeat("x", i+1) + ".lat"
	}
	m := newTestModel(names...)
	for _, n := range names[:3] {
		m.applyEvent(suite.Event{Case: n, Stage: suite.StageCompare, Status: suite.StatusDone})
	}
	m.applyEvent(suite.Event{Case: names[3], Stage: suite.StageRun, Status: suite.StatusError})

	vis := m.visible()
	if len(vis) != maxVisible {
		t.Fatalf("visible = %d rows, want %d", len(vis), maxVisible)
	}
	if vis[0].name != names[3] {
		t.Fatalf("first row = %q, want the failure", vis[0].name)
	}
	for _, it := range vis {
		if it.status == "ok" {
			t.Fatalf("passed case %q shown while rows are scarce", it.name)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 8); got != "abcde..." {
		t.Errorf("truncate long = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Errorf("truncate tiny = %q", got)
	}
}
