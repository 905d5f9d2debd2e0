package trace

import "context"

type ctxKey struct{}

// FromContext extracts the Tracer from context, falling back to Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

type parentKey struct{}

// ParentSpan returns the span ID attached by WithParent, or 0 for a root.
func ParentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(parentKey{}).(uint64); ok {
		return id
	}
	return 0
}

// WithParent makes id the parent of spans begun from ctx.
func WithParent(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, parentKey{}, id)
}
