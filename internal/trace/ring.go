package trace

import (
	"fmt"
	"io"
	"sync"
)

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// RingTracer keeps the most recent events in memory so a fatal error can
// show what led up to it.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int    // oldest slot once buf is full
	total uint64 // events accepted since creation
	level Level
}

// NewRingTracer returns a ring holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, 0, capacity), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && !ev.alwaysEmitted() {
		return
	}
	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	if len(t.buf) < cap(t.buf) {
		t.buf = append(t.buf, stored)
		return
	}
	t.buf[t.next] = stored
	t.next = (t.next + 1) % len(t.buf)
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - uint64(len(t.buf))
}

// Dump writes the retained events to w. In text format a leading line notes
// overwritten events.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	if n := t.Dropped(); n > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier event(s) dropped\n", n); err != nil {
			return err
		}
	}
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }
func (t *RingTracer) Level() Level { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
