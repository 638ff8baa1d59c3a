package services

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/comments"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/testutil"
)

func TestListLifecycle(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner")
	other := testutil.CreateUser(t, h.db, "other")

	created, err := h.lists.Create(h.ctx, owner.ID, &dto.CreateListRequest{Title: "  Best RPGs  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "Best RPGs" || created.Visibility != models.VisibilityPublic || created.Owner.Level != 1 {
		t.Fatalf("created = %+v", created)
	}

	var stored models.User
	h.db.First(&stored, "id = ?", owner.ID)
	if stored.XP != 50 {
		t.Fatalf("owner xp = %d, want 50", stored.XP)
	}

	private := models.VisibilityPrivate
	if _, err := h.lists.Update(h.ctx, other.ID, created.ID, &dto.UpdateListRequest{Visibility: &private}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("non-owner update err = %v, want forbidden", err)
	}
	updated, err := h.lists.Update(h.ctx, owner.ID, created.ID, &dto.UpdateListRequest{Visibility: &private})
	if err != nil || updated.Visibility != models.VisibilityPrivate {
		t.Fatalf("Update = %+v, %v", updated, err)
	}
	if _, err := h.lists.Get(h.ctx, other.ID, created.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("private get err = %v, want forbidden", err)
	}

	bogus := models.Visibility("friends")
	if _, err := h.lists.Update(h.ctx, owner.ID, created.ID, &dto.UpdateListRequest{Visibility: &bogus}); !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Fatalf("bad visibility err = %v, want invalid", err)
	}
}

func TestListDeleteCascadesAndRecomputesXP(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner")
	fan := testutil.CreateUser(t, h.db, "fan")
	cs := comments.NewService(h.db, notify.Discard)

	list, err := h.lists.Create(h.ctx, owner.ID, &dto.CreateListRequest{Title: "Shooters"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := cs.Create(h.ctx, fan.ID, list.ID, nil, "solid picks"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := h.ratings.Submit(h.ctx, fan.ID, list.ID, 4); err != nil {
		t.Fatalf("rate: %v", err)
	}

	if err := h.lists.Delete(h.ctx, fan.ID, list.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("non-owner delete err = %v, want forbidden", err)
	}
	if err := h.lists.Delete(h.ctx, owner.ID, list.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for name, model := range map[string]interface{}{
		"comments": &models.Comment{},
		"ratings":  &models.ListRating{},
		"lists":    &models.List{},
	} {
		var n int64
		h.db.Model(model).Count(&n)
		if n != 0 {
			t.Fatalf("%s left after delete: %d", name, n)
		}
	}

	var o, f models.User
	h.db.First(&o, "id = ?", owner.ID)
	h.db.First(&f, "id = ?", fan.ID)
	if o.XP != 0 || f.XP != 0 {
		t.Fatalf("xp owner=%d fan=%d, want 0 and 0", o.XP, f.XP)
	}
	if err := h.lists.Delete(h.ctx, owner.ID, list.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestListByUserAppliesVisibility(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner")
	fan := testutil.CreateUser(t, h.db, "fan")
	enemy := testutil.CreateUser(t, h.db, "enemy")
	for _, v := range []models.Visibility{models.VisibilityPublic, models.VisibilityFollowersOnly, models.VisibilityPrivate} {
		testutil.CreateList(t, h.db, owner.ID, v)
	}
	testutil.Follow(t, h.db, fan.ID, owner.ID)
	testutil.Block(t, h.db, owner.ID, enemy.ID)

	cases := []struct {
		name  string
		actor models.User
		want  int
	}{
		{name: "owner", actor: *owner, want: 3},
		{name: "follower", actor: *fan, want: 2},
		{name: "anonymous", actor: models.User{ID: access.Anonymous}, want: 1},
		{name: "blocked", actor: *enemy, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lists, err := h.lists.ListByUser(h.ctx, tc.actor.ID, owner.ID, 1, 10)
			if err != nil {
				t.Fatalf("ListByUser: %v", err)
			}
			if len(lists) != tc.want {
				t.Fatalf("visible lists = %d, want %d", len(lists), tc.want)
			}
		})
	}
}
