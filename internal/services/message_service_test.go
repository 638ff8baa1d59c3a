package services

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestSendRespectsMessagePolicy(t *testing.T) {
	h := newHarness(t)
	sender := testutil.CreateUser(t, h.db, "sender")

	setPolicy := func(u *models.User, p models.MessagePolicy) {
		h.db.Model(u).Update("message_policy", p)
	}
	open := testutil.CreateUser(t, h.db, "open")
	picky := testutil.CreateUser(t, h.db, "picky")
	setPolicy(picky, models.MessageFollowingOnly)
	closed := testutil.CreateUser(t, h.db, "closed")
	setPolicy(closed, models.MessageNone)
	blocker := testutil.CreateUser(t, h.db, "blocker")
	testutil.Block(t, h.db, blocker.ID, sender.ID)

	cases := []struct {
		name      string
		recipient uuid.UUID
		want      error
	}{
		{name: "everyone", recipient: open.ID, want: nil},
		{name: "following only, not followed", recipient: picky.ID, want: apperr.ErrForbidden},
		{name: "none", recipient: closed.ID, want: apperr.ErrForbidden},
		{name: "blocked", recipient: blocker.ID, want: apperr.ErrForbidden},
		{name: "missing", recipient: uuid.New(), want: apperr.ErrNotFound},
		{name: "self", recipient: sender.ID, want: apperr.ErrInvalidOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.messages.Send(h.ctx, sender.ID, &dto.SendMessageRequest{RecipientID: tc.recipient, Content: "hey there"})
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Send: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	testutil.Follow(t, h.db, picky.ID, sender.ID)
	if _, err := h.messages.Send(h.ctx, sender.ID, &dto.SendMessageRequest{RecipientID: picky.ID, Content: "thanks for the follow"}); err != nil {
		t.Fatalf("Send after follow: %v", err)
	}
	if got := len(h.events.For(picky.ID)); got != 1 {
		t.Fatalf("picky notifications = %d, want 1", got)
	}
}

func TestConversationNewestFirst(t *testing.T) {
	h := newHarness(t)
	clock := testutil.NewClock()
	h.messages.now = clock.Now
	a := testutil.CreateUser(t, h.db, "a")
	b := testutil.CreateUser(t, h.db, "b")

	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		from, to := a, b
		if i%2 == 1 {
			from, to = b, a
		}
		if _, err := h.messages.Send(h.ctx, from.ID, &dto.SendMessageRequest{RecipientID: to.ID, Content: text}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	conv, err := h.messages.Conversation(h.ctx, a.ID, b.ID, 1, 2)
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if conv.Total != 3 || len(conv.Messages) != 2 || conv.Messages[0].Content != "third" || conv.Messages[1].Content != "second" {
		t.Fatalf("conversation = %+v", conv)
	}

	marked, err := h.messages.MarkRead(h.ctx, b.ID, a.ID)
	if err != nil || marked != 2 {
		t.Fatalf("MarkRead = %d, %v; want 2", marked, err)
	}
}
