package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	KindHeartbeat // periodic liveness signal
	KindFatal     // runtime termination, emitted at every level but off
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver represents top-level CLI operations.
	ScopeDriver Scope = iota + 1
	// ScopeCase represents one conformance test case (compile + run).
	ScopeCase
	// ScopeCall represents one runtime primitive call.
	ScopeCall
	ScopeScan // input scanner internals
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeCase:
		return "case"
	case ScopeCall:
		return "call"
	case ScopeScan:
		return "scan"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	GID      uint64            // goroutine ID (for concurrent spans)
	Name     string            // e.g. "printInt", "case:core001.lat"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}

// Point emits an instant event if t accepts the scope.
func Point(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		GID:    getGoroutineID(),
		Name:   name,
		Detail: detail,
	})
}

// Fatal emits a fatal event. Unlike Point it ignores the scope filter, so
// LevelError still records why the program stopped.
func Fatal(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindFatal,
		Scope:  scope,
		GID:    getGoroutineID(),
		Name:   name,
		Detail: detail,
	})
}

// alwaysEmitted reports whether ev bypasses the level filter.
func (ev *Event) alwaysEmitted() bool {
	return ev.Kind == KindHeartbeat || ev.Kind == KindFatal
}
