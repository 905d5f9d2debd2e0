package trace

import "time"

// Span is one begin/end pair. A Span from a disabled tracer is inert but
// still measures its duration.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin emits a begin event and returns the span. parent is 0 for a root.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	s := &Span{tracer: Nop, started: time.Now()}
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return s
	}
	s.tracer = t
	s.id = NextSpanID()
	s.parent = parent
	s.gid = getGoroutineID()
	s.scope = scope
	s.name = name
	s.emit(KindSpanBegin, s.started, "", nil)
	return s
}

// End emits the end event carrying detail and any extras, and returns the
// span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	if s.live() {
		s.emit(KindSpanEnd, now, detail, s.extra)
	}
	return now.Sub(s.started)
}

// WithExtra attaches a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) live() bool {
	return s.tracer != nil && s.tracer.Enabled()
}

func (s *Span) emit(kind Kind, at time.Time, detail string, extra map[string]string) {
	s.tracer.Emit(&Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
}
