package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/aggregate"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSelfFollow       = apperr.Invalid("cannot follow yourself")
	ErrAlreadyFollowing = apperr.Invalid("already following this user")
	ErrSelfBlock        = apperr.Invalid("cannot block yourself")
	ErrAlreadyBlocked   = apperr.Invalid("user already blocked")
)

// SocialService owns the follow graph and the block relation. Follow and
// Block lock both user rows in id order so a follow can never slip in beside
// a concurrent block of the same pair.
type SocialService struct {
	db         *gorm.DB
	cfg        *config.Config
	resolver   *access.Resolver
	maintainer *aggregate.Maintainer
	emitter    notify.Emitter
}

func NewSocialService(db *gorm.DB, cfg *config.Config, emitter notify.Emitter) *SocialService {
	return &SocialService{
		db:         db,
		cfg:        cfg,
		resolver:   access.NewResolver(db),
		maintainer: aggregate.New(db),
		emitter:    emitter,
	}
}

func (s *SocialService) Follow(ctx context.Context, actor, target uuid.UUID) error {
	if actor == access.Anonymous {
		return apperr.Forbidden("sign in to follow")
	}
	if actor == target {
		return ErrSelfFollow
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.maintainer.LockAll(ctx, tx, "users", actor, target); err != nil {
			return err
		}
		ok, err := s.resolver.WithDB(tx).CanInteract(ctx, actor, target)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("cannot follow this user")
		}

		// Savepoint so the duplicate check does not abort the transaction.
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&models.Follow{FollowerID: actor, FolloweeID: target}).Error
		})
		if database.IsUniqueViolation(err) {
			return ErrAlreadyFollowing
		}
		if err != nil {
			return fmt.Errorf("failed to follow: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emitter.Emit(ctx, notify.Event{
		RecipientID: target,
		Kind:        notify.KindFollow,
		Message:     "You have a new follower",
		Link:        "/users/" + actor.String(),
	})
	return nil
}

func (s *SocialService) Unfollow(ctx context.Context, actor, target uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", actor, target).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unfollow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("not following this user")
	}
	return nil
}

// Block records the block and removes follow edges in both directions in the
// same transaction.
func (s *SocialService) Block(ctx context.Context, actor, target uuid.UUID) error {
	if actor == access.Anonymous {
		return apperr.Forbidden("sign in to block")
	}
	if actor == target {
		return ErrSelfBlock
	}

	var dropped int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.maintainer.LockAll(ctx, tx, "users", actor, target); err != nil {
			return err
		}
		if err := s.resolver.WithDB(tx).ActiveActor(ctx, actor); err != nil {
			return err
		}

		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&models.Block{BlockerID: actor, BlockedID: target}).Error
		})
		if database.IsUniqueViolation(err) {
			return ErrAlreadyBlocked
		}
		if err != nil {
			return fmt.Errorf("failed to block: %w", err)
		}

		res := tx.Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			actor, target, target, actor).Delete(&models.Follow{})
		if res.Error != nil {
			return fmt.Errorf("failed to drop follows: %w", res.Error)
		}
		dropped = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("user blocked", "user_id", actor, "blocked_id", target, "follows_removed", dropped)
	return nil
}

func (s *SocialService) Unblock(ctx context.Context, actor, target uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", actor, target).
		Delete(&models.Block{})
	if res.Error != nil {
		return fmt.Errorf("failed to unblock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user is not blocked")
	}
	return nil
}

// Blocked lists the users actor has blocked.
func (s *SocialService) Blocked(ctx context.Context, actor uuid.UUID) ([]dto.UserSummary, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ?", actor).
		Order("created_at DESC").
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}
	return s.summaries(ctx, ids)
}

// Followers lists who follows userID, newest first. The profile must be
// visible to actor.
func (s *SocialService) Followers(ctx context.Context, actor, userID uuid.UUID, page, size int) (*dto.UserPage, error) {
	return s.edges(ctx, actor, userID, "followee_id", "follower_id", page, size)
}

// Following lists who userID follows, newest first.
func (s *SocialService) Following(ctx context.Context, actor, userID uuid.UUID, page, size int) (*dto.UserPage, error) {
	return s.edges(ctx, actor, userID, "follower_id", "followee_id", page, size)
}

func (s *SocialService) edges(ctx context.Context, actor, userID uuid.UUID, match, pick string, page, size int) (*dto.UserPage, error) {
	if _, err := s.resolver.AuthorizeProfile(ctx, actor, userID); err != nil {
		return nil, err
	}
	page, size = pageBounds(s.cfg, page, size)

	q := s.db.WithContext(ctx).Model(&models.Follow{}).Where(match+" = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count follows: %w", err)
	}

	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where(match+" = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(size).Offset(offset(page, size)).
		Pluck(pick, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}

	users, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &dto.UserPage{Users: users, Page: page, PageSize: size, Total: total}, nil
}

func (s *SocialService) summaries(ctx context.Context, ids []uuid.UUID) ([]dto.UserSummary, error) {
	users, err := findUsers(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, dto.NewUserSummary(users[id]))
	}
	return out, nil
}
