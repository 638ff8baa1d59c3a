package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/aggregate"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrSelfRating = apperr.Invalid("cannot rate your own list")

// RatingService writes list ratings. Every write recomputes the list's
// rating_count and average_rating from all of its ratings in the same
// transaction.
type RatingService struct {
	db         *gorm.DB
	resolver   *access.Resolver
	maintainer *aggregate.Maintainer
	emitter    notify.Emitter
	now        func() time.Time
}

func NewRatingService(db *gorm.DB, emitter notify.Emitter) *RatingService {
	return &RatingService{
		db:         db,
		resolver:   access.NewResolver(db),
		maintainer: aggregate.New(db),
		emitter:    emitter,
		now:        time.Now,
	}
}

// Submit creates or replaces actor's rating of a list.
func (s *RatingService) Submit(ctx context.Context, actor, listID uuid.UUID, value int) (*dto.RatingResponse, error) {
	if value < MinRating || value > MaxRating {
		return nil, apperr.Invalid("rating must be between %d and %d", MinRating, MaxRating)
	}
	if actor == access.Anonymous {
		return nil, apperr.Forbidden("sign in to rate")
	}

	var (
		list    *models.List
		snap    aggregate.Snapshot
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.maintainer.Lock(ctx, tx, "lists", listID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.NotFound("list not found")
			}
			return err
		}
		resolver := s.resolver.WithDB(tx)
		if err := resolver.ActiveActor(ctx, actor); err != nil {
			return err
		}
		l, err := resolver.AuthorizeList(ctx, actor, listID)
		if err != nil {
			return err
		}
		if l.UserID == actor {
			return ErrSelfRating
		}
		list = l

		created, err = s.upsert(ctx, tx, actor, listID, value)
		if database.IsUniqueViolation(err) {
			// A concurrent first rating by the same user won; retry once as
			// an update of that row.
			created, err = s.upsert(ctx, tx, actor, listID, value)
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("concurrent rating of the same list")
			}
		}
		if err != nil {
			return err
		}

		snap, err = s.maintainer.RecomputeListRating(ctx, tx, listID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.emitter.Emit(ctx, notify.Event{
			RecipientID: list.UserID,
			Kind:        notify.KindListRating,
			Message:     fmt.Sprintf("Someone rated %q %d/%d", list.Title, value, MaxRating),
			Link:        "/lists/" + listID.String(),
		})
	}
	return &dto.RatingResponse{
		ListID:        listID,
		Value:         value,
		AverageRating: snap.Average,
		RatingCount:   snap.Count,
	}, nil
}

func (s *RatingService) upsert(ctx context.Context, tx *gorm.DB, actor, listID uuid.UUID, value int) (bool, error) {
	db := tx.WithContext(ctx)
	var existing models.ListRating
	err := db.Where("user_id = ? AND list_id = ?", actor, listID).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err := db.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&models.ListRating{UserID: actor, ListID: listID, Value: value}).Error
		})
		return err == nil, err
	}
	if err != nil {
		return false, fmt.Errorf("failed to load rating: %w", err)
	}
	err = db.Model(&existing).Updates(map[string]interface{}{"value": value, "updated_at": s.now()}).Error
	if err != nil {
		return false, fmt.Errorf("failed to update rating: %w", err)
	}
	return false, nil
}

// Remove deletes actor's rating of a list.
func (s *RatingService) Remove(ctx context.Context, actor, listID uuid.UUID) (*dto.RatingResponse, error) {
	var snap aggregate.Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.maintainer.Lock(ctx, tx, "lists", listID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.NotFound("list not found")
			}
			return err
		}
		res := tx.Where("user_id = ? AND list_id = ?", actor, listID).Delete(&models.ListRating{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove rating: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("you have not rated this list")
		}
		var err error
		snap, err = s.maintainer.RecomputeListRating(ctx, tx, listID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.RatingResponse{ListID: listID, AverageRating: snap.Average, RatingCount: snap.Count}, nil
}
