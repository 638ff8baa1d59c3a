package services

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestFollowersOnlyFollowThenBlock(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner")
	viewer := testutil.CreateUser(t, h.db, "viewer")
	list := testutil.CreateList(t, h.db, owner.ID, models.VisibilityFollowersOnly)

	if _, err := h.lists.Get(h.ctx, viewer.ID, list.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("before follow: err = %v, want forbidden", err)
	}

	if err := h.social.Follow(h.ctx, viewer.ID, owner.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if _, err := h.lists.Get(h.ctx, viewer.ID, list.ID); err != nil {
		t.Fatalf("after follow: %v", err)
	}
	if got := h.events.For(owner.ID); len(got) != 1 || got[0].Kind != notify.KindFollow {
		t.Fatalf("owner events = %+v, want one follow", got)
	}

	if err := h.social.Block(h.ctx, owner.ID, viewer.ID); err != nil {
		t.Fatalf("Block: %v", err)
	}
	var follows int64
	h.db.Model(&models.Follow{}).Count(&follows)
	if follows != 0 {
		t.Fatalf("follow edges after block = %d, want 0", follows)
	}
	if _, err := h.lists.Get(h.ctx, viewer.ID, list.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("after block: err = %v, want forbidden", err)
	}
	if err := h.social.Follow(h.ctx, viewer.ID, owner.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("follow while blocked: err = %v, want forbidden", err)
	}
}

func TestBlockRemovesBothDirections(t *testing.T) {
	h := newHarness(t)
	a := testutil.CreateUser(t, h.db, "alice")
	b := testutil.CreateUser(t, h.db, "bob")
	c := testutil.CreateUser(t, h.db, "carol")
	testutil.Follow(t, h.db, a.ID, b.ID)
	testutil.Follow(t, h.db, b.ID, a.ID)
	testutil.Follow(t, h.db, c.ID, a.ID)

	if err := h.social.Block(h.ctx, b.ID, a.ID); err != nil {
		t.Fatalf("Block: %v", err)
	}
	var remaining []models.Follow
	h.db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].FollowerID != c.ID {
		t.Fatalf("remaining follows = %+v, want only carol -> alice", remaining)
	}

	if err := h.social.Block(h.ctx, b.ID, a.ID); !errors.Is(err, ErrAlreadyBlocked) {
		t.Fatalf("second block err = %v, want already blocked", err)
	}
	blocked, err := h.social.Blocked(h.ctx, b.ID)
	if err != nil || len(blocked) != 1 || blocked[0].ID != a.ID {
		t.Fatalf("Blocked = %+v, %v", blocked, err)
	}
	if err := h.social.Unblock(h.ctx, b.ID, a.ID); err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	if err := h.social.Unblock(h.ctx, b.ID, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second unblock err = %v, want not found", err)
	}
}

func TestFollowGuards(t *testing.T) {
	h := newHarness(t)
	a := testutil.CreateUser(t, h.db, "alice")
	b := testutil.CreateUser(t, h.db, "bob")

	cases := []struct {
		name   string
		actor  models.User
		target models.User
		want   error
	}{
		{name: "self", actor: *a, target: *a, want: apperr.ErrInvalidOperation},
		{name: "anonymous", actor: models.User{ID: access.Anonymous}, target: *b, want: apperr.ErrForbidden},
		{name: "missing target", actor: *a, target: models.User{ID: uuid.New()}, want: apperr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := h.social.Follow(h.ctx, tc.actor.ID, tc.target.ID)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if err := h.social.Follow(h.ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := h.social.Follow(h.ctx, a.ID, b.ID); !errors.Is(err, ErrAlreadyFollowing) {
		t.Fatalf("duplicate follow err = %v, want already following", err)
	}
	if err := h.social.Unfollow(h.ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if err := h.social.Unfollow(h.ctx, a.ID, b.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second unfollow err = %v, want not found", err)
	}
}

func TestFollowDeletedUser(t *testing.T) {
	h := newHarness(t)
	a := testutil.CreateUser(t, h.db, "alice")
	b := testutil.CreateUser(t, h.db, "bob")
	if err := h.users.Delete(h.ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := h.social.Follow(h.ctx, a.ID, b.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestFollowersPagination(t *testing.T) {
	h := newHarness(t)
	star := testutil.CreateUser(t, h.db, "star")
	for _, name := range []string{"f1", "f2", "f3"} {
		fan := testutil.CreateUser(t, h.db, name)
		if err := h.social.Follow(h.ctx, fan.ID, star.ID); err != nil {
			t.Fatalf("Follow: %v", err)
		}
	}

	page, err := h.social.Followers(h.ctx, access.Anonymous, star.ID, 1, 2)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if page.Total != 3 || len(page.Users) != 2 {
		t.Fatalf("page = %+v, want 2 of 3", page)
	}
	following, err := h.social.Following(h.ctx, star.ID, star.ID, 1, 10)
	if err != nil || following.Total != 0 {
		t.Fatalf("Following = %+v, %v", following, err)
	}

	h.db.Model(&models.User{}).Where("id = ?", star.ID).Update("profile_visibility", models.VisibilityPrivate)
	if _, err := h.social.Followers(h.ctx, access.Anonymous, star.ID, 1, 2); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("private profile err = %v, want forbidden", err)
	}
}
