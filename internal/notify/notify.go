// Package notify carries notification events from the core to whatever turns
// them into stored or pushed notifications. Emission is fire-and-forget and
// happens only after the triggering transaction committed.
package notify

import (
	"context"

	"github.com/google/uuid"
)

type Kind string

const (
	KindFollow       Kind = "follow"
	KindListComment  Kind = "list_comment"
	KindCommentReply Kind = "comment_reply"
	KindCommentVote  Kind = "comment_upvote"
	KindListRating   Kind = "list_rating"
	KindReviewVote   Kind = "review_upvote"
	KindMessage      Kind = "message"
)

type Event struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Kind        Kind      `json:"kind"`
	Message     string    `json:"message"`
	Link        string    `json:"link"`
}

// Emitter accepts events without reporting delivery failures to the caller.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// Sink delivers an event to one destination.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

type discard struct{}

func (discard) Emit(context.Context, Event) {}

// Discard drops every event.
var Discard Emitter = discard{}

// Multi emits every event to each of its emitters in order.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, ev Event) {
	for _, e := range m {
		e.Emit(ctx, ev)
	}
}
