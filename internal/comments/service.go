// Package comments implements threaded comments on lists: create, edit,
// delete with cascade, voting, and depth-bounded tree reads.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/aggregate"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/votes"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultRenderDepth = 3
	voteTable          = "comment_votes"
)

type Service struct {
	db              *gorm.DB
	resolver        *access.Resolver
	maintainer      *aggregate.Maintainer
	ledger          *votes.Ledger
	emitter         notify.Emitter
	filter          *moderation.Filter
	depth           int
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

type Option func(*Service)

// WithRenderDepth sets how many levels GetTree and GetThread attach.
func WithRenderDepth(depth int) Option {
	return func(s *Service) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithPageSizes(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultPageSize = def
		}
		if max > 0 {
			s.maxPageSize = max
		}
	}
}

func WithFilter(f *moderation.Filter) Option {
	return func(s *Service) { s.filter = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, emitter notify.Emitter, opts ...Option) *Service {
	if emitter == nil {
		emitter = notify.Discard
	}
	s := &Service{
		db:              db,
		resolver:        access.NewResolver(db),
		maintainer:      aggregate.New(db),
		emitter:         emitter,
		filter:          moderation.New(),
		depth:           DefaultRenderDepth,
		defaultPageSize: 20,
		maxPageSize:     100,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = votes.NewLedger(db, s.voteKind())
	return s
}

func (s *Service) voteKind() votes.Kind {
	return votes.Kind{
		Name:  "comment",
		Table: voteTable,
		Load: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (votes.Target, error) {
			return loadComment(ctx, tx, id)
		},
		Authorize: func(ctx context.Context, tx *gorm.DB, actor uuid.UUID, target votes.Target) error {
			c := target.(*models.Comment)
			resolver := s.resolver.WithDB(tx)
			if _, err := resolver.AuthorizeList(ctx, actor, c.ListID); err != nil {
				return err
			}
			blocked, err := resolver.IsBlocked(ctx, actor, c.UserID)
			if err != nil {
				return err
			}
			if blocked {
				return apperr.Forbidden("cannot vote on this comment")
			}
			return nil
		},
		AfterChange: func(ctx context.Context, tx *gorm.DB, _ uuid.UUID, target votes.Target, _ votes.Change) error {
			_, err := s.maintainer.RecomputeUserXP(ctx, tx, target.OwnerID())
			return err
		},
	}
}

// Create adds a top-level comment when parentID is nil, otherwise a reply.
// The parent must belong to the same list.
func (s *Service) Create(ctx context.Context, actor, listID uuid.UUID, parentID *uuid.UUID, content string) (*models.Comment, error) {
	if actor == access.Anonymous {
		return nil, apperr.Forbidden("sign in to comment")
	}
	content, err := s.filter.Validate(content)
	if err != nil {
		return nil, err
	}

	var (
		comment models.Comment
		list    *models.List
		parent  *models.Comment
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolver := s.resolver.WithDB(tx)
		l, err := resolver.AuthorizeList(ctx, actor, listID)
		if err != nil {
			return err
		}
		if err := resolver.ActiveActor(ctx, actor); err != nil {
			return err
		}
		list = l

		if parentID != nil {
			p, err := loadComment(ctx, tx, *parentID)
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.NotFound("parent comment not found")
			}
			if err != nil {
				return err
			}
			if p.ListID != listID {
				return apperr.Invalid("parent comment belongs to another list")
			}
			blocked, err := resolver.IsBlocked(ctx, actor, p.UserID)
			if err != nil {
				return err
			}
			if blocked {
				return apperr.Forbidden("cannot reply to this comment")
			}
			parent = p
		}

		now := s.now()
		comment = models.Comment{
			ListID:          listID,
			UserID:          actor,
			ParentCommentID: parentID,
			Content:         content,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		_, err = s.maintainer.RecomputeUserXP(ctx, tx, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	link := "/lists/" + listID.String() + "/comments/" + comment.ID.String()
	switch {
	case parent != nil && parent.UserID != actor:
		s.emitter.Emit(ctx, notify.Event{
			RecipientID: parent.UserID,
			Kind:        notify.KindCommentReply,
			Message:     "Someone replied to your comment",
			Link:        link,
		})
	case parent == nil && list.UserID != actor:
		s.emitter.Emit(ctx, notify.Event{
			RecipientID: list.UserID,
			Kind:        notify.KindListComment,
			Message:     fmt.Sprintf("New comment on %q", list.Title),
			Link:        link,
		})
	}
	slog.Info("comment created", "comment_id", comment.ID, "list_id", listID, "user_id", actor)
	return &comment, nil
}

// Edit replaces the content of a comment. Only its author may edit it.
func (s *Service) Edit(ctx context.Context, actor, commentID uuid.UUID, content string) (*models.Comment, error) {
	content, err := s.filter.Validate(content)
	if err != nil {
		return nil, err
	}

	var comment *models.Comment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.authorOnly(ctx, tx, actor, commentID)
		if err != nil {
			return err
		}
		c.Content = content
		c.UpdatedAt = s.now()
		err = tx.Model(c).Updates(map[string]interface{}{"content": c.Content, "updated_at": c.UpdatedAt}).Error
		if err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment and, through the store's cascade, its whole
// subtree and their votes. Every affected author's XP is recomputed.
func (s *Service) Delete(ctx context.Context, actor, commentID uuid.UUID) error {
	var removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.authorOnly(ctx, tx, actor, commentID)
		if err != nil {
			return err
		}

		authors, count, err := subtreeAuthors(ctx, tx, c)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, "id = ?", c.ID).Error; err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		removed = count
		return s.maintainer.RecomputeUsersXP(ctx, tx, authors)
	})
	if err != nil {
		return err
	}
	slog.Info("comment deleted", "comment_id", commentID, "user_id", actor, "removed", removed)
	return nil
}

// Vote toggles the actor's vote on a comment and notifies the author of new
// upvotes.
func (s *Service) Vote(ctx context.Context, actor, commentID uuid.UUID, value int) (VoteResult, error) {
	out, err := s.ledger.SubmitVote(ctx, actor, commentID, value)
	if err != nil {
		return VoteResult{}, err
	}

	comment := out.Target.(*models.Comment)
	if out.Value == votes.Up && out.Result != votes.Removed {
		s.emitter.Emit(ctx, notify.Event{
			RecipientID: comment.UserID,
			Kind:        notify.KindCommentVote,
			Message:     "Someone upvoted your comment",
			Link:        "/lists/" + comment.ListID.String() + "/comments/" + comment.ID.String(),
		})
	}

	tally, err := s.ledger.TallyOf(ctx, commentID)
	if err != nil {
		return VoteResult{}, err
	}
	return VoteResult{
		Result:    out.Result,
		UserVote:  out.Value,
		Score:     tally.Score(),
		Upvotes:   tally.Up,
		Downvotes: tally.Down,
	}, nil
}

// VoteResult reports the state machine outcome and the comment's new tally.
type VoteResult struct {
	Result    votes.Result `json:"result"`
	UserVote  int          `json:"user_vote"`
	Score     int64        `json:"score"`
	Upvotes   int64        `json:"upvotes"`
	Downvotes int64        `json:"downvotes"`
}

func (s *Service) authorOnly(ctx context.Context, tx *gorm.DB, actor, commentID uuid.UUID) (*models.Comment, error) {
	c, err := loadComment(ctx, tx, commentID)
	if err != nil {
		return nil, err
	}
	if actor == access.Anonymous || c.UserID != actor {
		return nil, apperr.Forbidden("only the author can change this comment")
	}
	// Authors keep control of their own comments even after losing sight of
	// the list, but a deleted account changes nothing.
	if err := s.resolver.WithDB(tx).ActiveActor(ctx, actor); err != nil {
		return nil, err
	}
	return c, nil
}

func loadComment(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	if err := tx.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, fmt.Errorf("load comment: %w", err)
	}
	return &c, nil
}

// subtreeAuthors walks the subtree below root level by level and returns the
// distinct authors and the number of comments in it, root included.
func subtreeAuthors(ctx context.Context, tx *gorm.DB, root *models.Comment) ([]uuid.UUID, int, error) {
	authors := []uuid.UUID{root.UserID}
	count := 1
	frontier := []uuid.UUID{root.ID}
	for len(frontier) > 0 {
		var rows []struct {
			ID     uuid.UUID
			UserID uuid.UUID
		}
		err := tx.WithContext(ctx).Model(&models.Comment{}).
			Select("id, user_id").
			Where("parent_comment_id IN ?", frontier).
			Scan(&rows).Error
		if err != nil {
			return nil, 0, fmt.Errorf("walk replies: %w", err)
		}
		frontier = frontier[:0]
		for _, r := range rows {
			frontier = append(frontier, r.ID)
			authors = append(authors, r.UserID)
		}
		count += len(rows)
	}
	return authors, count, nil
}
