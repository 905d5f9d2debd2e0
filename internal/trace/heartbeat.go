package trace

import (
	"context"
	"strconv"
	"time"
)

// Heartbeat emits a liveness event at a fixed interval. A heartbeat with no
// span end after it points at a hung compiler or test program.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat begins beating on t. status, if non-nil, is appended to each
// beat's detail. It returns nil when t is disabled or interval is not
// positive; Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration, status func() string) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.beat(ctx, t, interval, status)
	return h
}

func (h *Heartbeat) beat(ctx context.Context, t Tracer, interval time.Duration, status func() string) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			detail := "#" + strconv.Itoa(n)
			if status != nil {
				detail += " " + status()
			}
			t.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: detail,
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
