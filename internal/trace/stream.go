package trace

import (
	"io"
	"os"
	"sync"
)

// StreamTracer formats each event and writes it immediately.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

// NewStreamTracer writes events accepted at level to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

// Emit writes ev. Write errors are dropped: a broken trace sink must not
// change what the traced program does.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && !ev.alwaysEmitted() {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	line := FormatEvent(ev, t.format)

	t.mu.Lock()
	_, _ = t.w.Write(line) //nolint:errcheck
	t.mu.Unlock()
}

// Flush flushes w when it buffers.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes w, except for the process's standard streams.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.w == os.Stderr || t.w == os.Stdout {
		return nil
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
