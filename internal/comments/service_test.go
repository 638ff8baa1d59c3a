package comments

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/testutil"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/votes"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	svc      *Service
	events   *testutil.Recorder
	owner    *models.User
	list     *models.List
	ctx      context.Context
	numUsers int
}

func newEnv(t *testing.T, visibility models.Visibility) *env {
	t.Helper()
	db := testutil.NewDB(t)
	events := &testutil.Recorder{}
	owner := testutil.CreateUser(t, db, "owner")
	return &env{
		db:     db,
		svc:    NewService(db, events, WithClock(testutil.NewClock().Now)),
		events: events,
		owner:  owner,
		list:   testutil.CreateList(t, db, owner.ID, visibility),
		ctx:    context.Background(),
	}
}

func (e *env) user(t *testing.T) *models.User {
	t.Helper()
	e.numUsers++
	return testutil.CreateUser(t, e.db, "user"+string(rune('a'+e.numUsers)))
}

func (e *env) comment(t *testing.T, actor uuid.UUID, parent *models.Comment, content string) *models.Comment {
	t.Helper()
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}
	c, err := e.svc.Create(e.ctx, actor, e.list.ID, parentID, content)
	if err != nil {
		t.Fatalf("Create(%q): %v", content, err)
	}
	return c
}

func (e *env) countComments(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&models.Comment{}).Count(&n).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	return n
}

func TestCrossListReplyWritesNothing(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	other := testutil.CreateList(t, e.db, e.owner.ID, models.VisibilityPublic)
	c := e.comment(t, e.owner.ID, nil, "first")

	_, err := e.svc.Create(e.ctx, e.owner.ID, other.ID, &c.ID, "wrong list")
	if !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Fatalf("err = %v, want invalid operation", err)
	}
	missing := uuid.New()
	_, err = e.svc.Create(e.ctx, e.owner.ID, e.list.ID, &missing, "no parent")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing parent err = %v, want not found", err)
	}
	if n := e.countComments(t); n != 1 {
		t.Fatalf("comments = %d, want 1", n)
	}
}

func TestCreateGuards(t *testing.T) {
	e := newEnv(t, models.VisibilityPrivate)
	stranger := e.user(t)

	cases := []struct {
		name    string
		actor   uuid.UUID
		list    uuid.UUID
		content string
		want    error
	}{
		{name: "anonymous", actor: access.Anonymous, list: e.list.ID, content: "hi", want: apperr.ErrForbidden},
		{name: "private list", actor: stranger.ID, list: e.list.ID, content: "hi", want: apperr.ErrForbidden},
		{name: "missing list", actor: stranger.ID, list: uuid.New(), content: "hi", want: apperr.ErrNotFound},
		{name: "filtered", actor: e.owner.ID, list: e.list.ID, content: "visit https://spam.example", want: apperr.ErrInvalidOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Create(e.ctx, tc.actor, tc.list, nil, tc.content)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if n := e.countComments(t); n != 0 {
		t.Fatalf("comments = %d, want 0", n)
	}
}

func TestBlockedUserCannotReply(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	author := e.user(t)
	troll := e.user(t)
	c := e.comment(t, author.ID, nil, "my take")
	testutil.Block(t, e.db, author.ID, troll.ID)

	_, err := e.svc.Create(e.ctx, troll.ID, e.list.ID, &c.ID, "reply")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if _, err := e.svc.Vote(e.ctx, troll.ID, c.ID, votes.Down); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("vote err = %v, want forbidden", err)
	}
}

func TestTreeRendersThreeLevelsNewestFirst(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	u := e.user(t)

	older := e.comment(t, u.ID, nil, "older top")
	newer := e.comment(t, u.ID, nil, "newer top")
	r1 := e.comment(t, e.owner.ID, older, "reply one")
	r2 := e.comment(t, u.ID, older, "reply two")
	deep := e.comment(t, e.owner.ID, r1, "level three")
	e.comment(t, u.ID, deep, "level four a")
	e.comment(t, u.ID, deep, "level four b")

	tree, err := e.svc.GetTree(e.ctx, access.Anonymous, e.list.ID, 1, 10)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if tree.Total != 2 || len(tree.Comments) != 2 {
		t.Fatalf("top level = %d (total %d), want 2", len(tree.Comments), tree.Total)
	}
	if tree.Comments[0].ID != newer.ID || tree.Comments[1].ID != older.ID {
		t.Fatal("top level is not newest first")
	}

	top := tree.Comments[1]
	if top.ReplyCount != 2 || len(top.Replies) != 2 {
		t.Fatalf("older top replies = %d (count %d), want 2", len(top.Replies), top.ReplyCount)
	}
	if top.Replies[0].ID != r2.ID || top.Replies[1].ID != r1.ID {
		t.Fatal("replies are not newest first")
	}

	level3 := top.Replies[1].Replies
	if len(level3) != 1 || level3[0].ID != deep.ID {
		t.Fatalf("level three = %+v, want the deep reply", level3)
	}
	if len(level3[0].Replies) != 0 || level3[0].ReplyCount != 2 {
		t.Fatalf("last level replies = %d, reply_count = %d; want 0 and 2", len(level3[0].Replies), level3[0].ReplyCount)
	}

	thread, err := e.svc.GetThread(e.ctx, access.Anonymous, deep.ID)
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if len(thread.Replies) != 2 || thread.Replies[0].Content != "level four b" {
		t.Fatalf("thread replies = %+v", thread.Replies)
	}
}

func TestTreePagination(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	var ids []uuid.UUID
	for _, text := range []string{"one", "two", "three"} {
		ids = append(ids, e.comment(t, e.owner.ID, nil, text).ID)
	}

	page2, err := e.svc.GetTree(e.ctx, e.owner.ID, e.list.ID, 2, 2)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if page2.Total != 3 || len(page2.Comments) != 1 || page2.Comments[0].ID != ids[0] {
		t.Fatalf("page 2 = %+v, want only the oldest comment", page2.Comments)
	}

	clamped, _ := e.svc.GetTree(e.ctx, e.owner.ID, e.list.ID, 0, 1000)
	if clamped.Page != 1 || clamped.PageSize != 100 {
		t.Fatalf("page/size = %d/%d, want 1/100", clamped.Page, clamped.PageSize)
	}
}

func TestVoteFlipScenario(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	author := e.user(t)
	a, b, c := e.user(t), e.user(t), e.user(t)
	comment := e.comment(t, author.ID, nil, "hot take")

	for _, v := range []struct {
		actor uuid.UUID
		value int
	}{{a.ID, votes.Up}, {b.ID, votes.Up}, {c.ID, votes.Down}} {
		if _, err := e.svc.Vote(e.ctx, v.actor, comment.ID, v.value); err != nil {
			t.Fatalf("Vote: %v", err)
		}
	}

	res, err := e.svc.Vote(e.ctx, c.ID, comment.ID, votes.Up)
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if res.Result != votes.Flipped || res.Score != 3 || res.Upvotes+res.Downvotes != 3 {
		t.Fatalf("flip result = %+v, want flipped with score 3 over 3 votes", res)
	}

	tree, _ := e.svc.GetTree(e.ctx, c.ID, e.list.ID, 1, 10)
	node := tree.Comments[0]
	if node.Score != 3 || node.UserVote != votes.Up {
		t.Fatalf("node score %d user vote %d, want 3 and 1", node.Score, node.UserVote)
	}

	var stored models.User
	e.db.First(&stored, "id = ?", author.ID)
	if stored.XP != 5+3*2 {
		t.Fatalf("author xp = %d, want 11", stored.XP)
	}
	if got := len(e.events.For(author.ID)); got != 3 {
		t.Fatalf("upvote notifications = %d, want 3", got)
	}
}

func TestSelfVoteRejected(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	c := e.comment(t, e.owner.ID, nil, "mine")
	if _, err := e.svc.Vote(e.ctx, e.owner.ID, c.ID, votes.Up); !errors.Is(err, apperr.ErrInvalidOperation) {
		t.Fatalf("err = %v, want invalid operation", err)
	}
}

func TestDeleteCascadesAndRecomputesXP(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	author := e.user(t)
	replier := e.user(t)

	root := e.comment(t, author.ID, nil, "root")
	reply := e.comment(t, replier.ID, root, "reply")
	e.comment(t, author.ID, reply, "nested")
	keep := e.comment(t, replier.ID, nil, "unrelated")
	if _, err := e.svc.Vote(e.ctx, author.ID, reply.ID, votes.Up); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	if err := e.svc.Delete(e.ctx, replier.ID, root.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("non-author delete err = %v, want forbidden", err)
	}
	if err := e.svc.Delete(e.ctx, author.ID, root.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var remaining []models.Comment
	e.db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].ID != keep.ID {
		t.Fatalf("remaining comments = %+v, want only the unrelated one", remaining)
	}
	var voteRows int64
	e.db.Model(&models.CommentVote{}).Count(&voteRows)
	if voteRows != 0 {
		t.Fatalf("votes on deleted comments = %d", voteRows)
	}

	var a, r models.User
	e.db.First(&a, "id = ?", author.ID)
	e.db.First(&r, "id = ?", replier.ID)
	if a.XP != 0 || r.XP != 5 {
		t.Fatalf("xp author=%d replier=%d, want 0 and 5", a.XP, r.XP)
	}

	if _, err := e.svc.GetThread(e.ctx, e.owner.ID, reply.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("deleted thread err = %v, want not found", err)
	}
}

func TestEditAuthorOnly(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	author := e.user(t)
	c := e.comment(t, author.ID, nil, "typo")

	if _, err := e.svc.Edit(e.ctx, e.owner.ID, c.ID, "fixed"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	edited, err := e.svc.Edit(e.ctx, author.ID, c.ID, "  fixed  ")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.Content != "fixed" || !edited.UpdatedAt.After(edited.CreatedAt) {
		t.Fatalf("edited = %+v", edited)
	}
}

func TestNotificationsTargetTheRightUser(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	u := e.user(t)

	top := e.comment(t, u.ID, nil, "top")
	e.comment(t, e.owner.ID, top, "owner reply")
	e.comment(t, u.ID, top, "self reply")

	ownerEvents := e.events.For(e.owner.ID)
	if len(ownerEvents) != 1 || ownerEvents[0].Kind != notify.KindListComment {
		t.Fatalf("owner events = %+v, want one list comment", ownerEvents)
	}
	userEvents := e.events.For(u.ID)
	if len(userEvents) != 1 || userEvents[0].Kind != notify.KindCommentReply {
		t.Fatalf("author events = %+v, want one reply", userEvents)
	}
}

func TestFollowersOnlyTreeAndDeletedAuthor(t *testing.T) {
	e := newEnv(t, models.VisibilityFollowersOnly)
	fan := e.user(t)
	testutil.Follow(t, e.db, fan.ID, e.owner.ID)
	e.comment(t, fan.ID, nil, "love it")

	if _, err := e.svc.GetTree(e.ctx, access.Anonymous, e.list.ID, 1, 10); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("anonymous err = %v, want forbidden", err)
	}

	e.db.Model(&models.User{}).Where("id = ?", fan.ID).Update("deleted", true)
	tree, err := e.svc.GetTree(e.ctx, e.owner.ID, e.list.ID, 1, 10)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if author := tree.Comments[0].Author; !author.Deleted || author.Username != "[deleted]" {
		t.Fatalf("author = %+v, want anonymized", author)
	}
}

func TestAuthorKeepsControlAfterBlock(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	author := e.user(t)
	c := e.comment(t, author.ID, nil, "draft")
	testutil.Block(t, e.db, e.owner.ID, author.ID)

	if _, err := e.svc.Edit(e.ctx, author.ID, c.ID, "final"); err != nil {
		t.Fatalf("Edit after block: %v", err)
	}
	if err := e.svc.Delete(e.ctx, author.ID, c.ID); err != nil {
		t.Fatalf("Delete after block: %v", err)
	}
}

func TestDeletedAccountCannotComment(t *testing.T) {
	e := newEnv(t, models.VisibilityPublic)
	ghost := e.user(t)
	c := e.comment(t, ghost.ID, nil, "before")
	e.db.Model(&models.User{}).Where("id = ?", ghost.ID).Update("deleted", true)

	if _, err := e.svc.Create(e.ctx, ghost.ID, e.list.ID, nil, "after"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("create err = %v, want forbidden", err)
	}
	if _, err := e.svc.Edit(e.ctx, ghost.ID, c.ID, "edited"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("edit err = %v, want forbidden", err)
	}
	if _, err := e.svc.Vote(e.ctx, ghost.ID, e.comment(t, e.owner.ID, nil, "owner").ID, 1); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("vote err = %v, want forbidden", err)
	}
	if n := e.countComments(t); n != 2 {
		t.Fatalf("comments = %d, want 2", n)
	}
}
