package access

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/testutil"
	"github.com/google/uuid"
)

var allVisibilities = []models.Visibility{
	models.VisibilityPublic,
	models.VisibilityFollowersOnly,
	models.VisibilityPrivate,
}

func TestDecide(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name  string
		actor uuid.UUID
		vis   models.Visibility
		rel   Relations
		allow bool
	}{
		{name: "owner private", actor: owner, vis: models.VisibilityPrivate, allow: true},
		{name: "owner ignores block", actor: owner, vis: models.VisibilityPrivate, rel: Relations{Blocked: true}, allow: true},
		{name: "stranger public", actor: other, vis: models.VisibilityPublic, allow: true},
		{name: "stranger followers only", actor: other, vis: models.VisibilityFollowersOnly, allow: false},
		{name: "follower followers only", actor: other, vis: models.VisibilityFollowersOnly, rel: Relations{Following: true}, allow: true},
		{name: "follower private", actor: other, vis: models.VisibilityPrivate, rel: Relations{Following: true}, allow: false},
		{name: "blocked public", actor: other, vis: models.VisibilityPublic, rel: Relations{Blocked: true}, allow: false},
		{name: "anonymous public", actor: Anonymous, vis: models.VisibilityPublic, allow: true},
		{name: "anonymous followers only", actor: Anonymous, vis: models.VisibilityFollowersOnly, rel: Relations{Following: true}, allow: false},
		{name: "anonymous private", actor: Anonymous, vis: models.VisibilityPrivate, allow: false},
		{name: "unknown visibility", actor: other, vis: models.Visibility("bogus"), allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Resource{OwnerID: owner, Visibility: tc.vis}
			if got := Decide(tc.actor, res, tc.rel); got != tc.allow {
				t.Fatalf("Decide() = %v, want %v", got, tc.allow)
			}
		})
	}
}

func TestBlockAlwaysDeniesNonOwner(t *testing.T) {
	owner := uuid.New()
	actor := uuid.New()
	for _, vis := range allVisibilities {
		for _, following := range []bool{false, true} {
			res := Resource{OwnerID: owner, Visibility: vis}
			if Decide(actor, res, Relations{Blocked: true, Following: following}) {
				t.Fatalf("blocked actor allowed: visibility=%s following=%v", vis, following)
			}
		}
	}
}

func TestCanViewBlockEitherDirection(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	r := NewResolver(db)

	owner := testutil.CreateUser(t, db, "owner")
	blocker := testutil.CreateUser(t, db, "blocker")
	blocked := testutil.CreateUser(t, db, "blocked")
	testutil.Block(t, db, blocker.ID, owner.ID)
	testutil.Block(t, db, owner.ID, blocked.ID)

	for _, vis := range allVisibilities {
		res := Resource{OwnerID: owner.ID, Visibility: vis}
		for _, actor := range []*models.User{blocker, blocked} {
			ok, err := r.CanView(ctx, actor.ID, res)
			if err != nil {
				t.Fatalf("CanView: %v", err)
			}
			if ok {
				t.Fatalf("%s can view %s resource despite block", actor.Username, vis)
			}
		}
	}
}

func TestCanViewFollowersOnly(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	r := NewResolver(db)

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	list := testutil.CreateList(t, db, owner.ID, models.VisibilityFollowersOnly)

	if ok, _ := r.CanView(ctx, fan.ID, ListResource(list)); ok {
		t.Fatal("non-follower can view followers-only list")
	}

	// The reverse edge does not grant access.
	testutil.Follow(t, db, owner.ID, fan.ID)
	if ok, _ := r.CanView(ctx, fan.ID, ListResource(list)); ok {
		t.Fatal("followee-of-owner can view followers-only list")
	}

	testutil.Follow(t, db, fan.ID, owner.ID)
	ok, err := r.CanView(ctx, fan.ID, ListResource(list))
	if err != nil {
		t.Fatalf("CanView: %v", err)
	}
	if !ok {
		t.Fatal("follower cannot view followers-only list")
	}
}

func TestAuthorizeListDistinguishesNotFound(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	r := NewResolver(db)

	owner := testutil.CreateUser(t, db, "owner")
	stranger := testutil.CreateUser(t, db, "stranger")
	private := testutil.CreateList(t, db, owner.ID, models.VisibilityPrivate)

	if _, err := r.AuthorizeList(ctx, stranger.ID, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing list err = %v, want not found", err)
	}
	if _, err := r.AuthorizeList(ctx, stranger.ID, private.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("private list err = %v, want forbidden", err)
	}
	if _, err := r.AuthorizeList(ctx, Anonymous, private.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("anonymous private list err = %v, want forbidden", err)
	}
	got, err := r.AuthorizeList(ctx, owner.ID, private.ID)
	if err != nil {
		t.Fatalf("owner AuthorizeList: %v", err)
	}
	if got.ID != private.ID {
		t.Fatalf("AuthorizeList returned %s, want %s", got.ID, private.ID)
	}
}

func TestCanInteract(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	r := NewResolver(db)

	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	c := testutil.CreateUser(t, db, "c")
	testutil.Block(t, db, b.ID, a.ID)

	if ok, err := r.CanInteract(ctx, a.ID, b.ID); err != nil || ok {
		t.Fatalf("CanInteract(a, b) = %v, %v; want false (blocked by b)", ok, err)
	}
	if ok, err := r.CanInteract(ctx, a.ID, c.ID); err != nil || !ok {
		t.Fatalf("CanInteract(a, c) = %v, %v; want true", ok, err)
	}
	if ok, _ := r.CanInteract(ctx, Anonymous, c.ID); ok {
		t.Fatal("anonymous actor can interact")
	}
	if _, err := r.CanInteract(ctx, a.ID, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing target err = %v, want not found", err)
	}

	if err := db.Model(c).Update("deleted", true).Error; err != nil {
		t.Fatalf("delete c: %v", err)
	}
	if _, err := r.CanInteract(ctx, a.ID, c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("deleted target err = %v, want not found", err)
	}
}

func TestCanMessagePolicies(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	r := NewResolver(db)

	sender := testutil.CreateUser(t, db, "sender")
	open := testutil.CreateUser(t, db, "open")
	picky := testutil.CreateUser(t, db, "picky")
	closed := testutil.CreateUser(t, db, "closed")
	db.Model(picky).Update("message_policy", models.MessageFollowingOnly)
	db.Model(closed).Update("message_policy", models.MessageNone)

	check := func(name string, recipient uuid.UUID, want bool) {
		t.Helper()
		got, err := r.CanMessage(ctx, sender.ID, recipient)
		if err != nil {
			t.Fatalf("%s: CanMessage: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: CanMessage = %v, want %v", name, got, want)
		}
	}

	check("everyone", open.ID, true)
	check("following only, not followed", picky.ID, false)
	testutil.Follow(t, db, picky.ID, sender.ID)
	check("following only, recipient follows sender", picky.ID, true)
	check("none", closed.ID, false)

	testutil.Block(t, db, sender.ID, open.ID)
	check("blocked", open.ID, false)
}
