package testutil

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/google/uuid"
)

// Recorder is a synchronous notify.Emitter that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *Recorder) Emit(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

// For returns the events addressed to recipient.
func (r *Recorder) For(recipient uuid.UUID) []notify.Event {
	var out []notify.Event
	for _, ev := range r.Events() {
		if ev.RecipientID == recipient {
			out = append(out, ev)
		}
	}
	return out
}
