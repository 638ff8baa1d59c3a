package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher queues events and hands them to every sink from a single
// worker goroutine. A full queue drops the event with a warning.
type Dispatcher struct {
	sinks   []Sink
	queue   chan Event
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		sinks:   sinks,
		queue:   make(chan Event, buffer),
		timeout: 5 * time.Second,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, ev); err != nil {
			slog.Error("notification delivery failed",
				"kind", string(ev.Kind),
				"recipient_id", ev.RecipientID.String(),
				"error", err,
			)
		}
	}
}

// Emit never blocks the request path; the caller's context is not carried
// into delivery because the request may finish first.
func (d *Dispatcher) Emit(_ context.Context, ev Event) {
	select {
	case d.queue <- ev:
	default:
		slog.Warn("notification queue full, dropping event",
			"kind", string(ev.Kind),
			"recipient_id", ev.RecipientID.String(),
		)
	}
}

// Stop drains the queue and waits for the worker to exit. Emit must not be
// called after Stop.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
