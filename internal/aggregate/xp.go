package aggregate

import (
	"context"
	"fmt"
	"math"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	xpPerList    = 50
	xpPerReview  = 25
	xpPerComment = 5
	xpPerUpvote  = 2
	xpPerLevelSq = 100
)

// XPSnapshot is a user's recomputed experience.
type XPSnapshot struct {
	XP    int
	Level int
}

// LevelFor returns 1 + floor(sqrt(xp/100)).
func LevelFor(xp int) int {
	if xp <= 0 {
		return 1
	}
	return 1 + int(math.Sqrt(float64(xp)/xpPerLevelSq))
}

// RecomputeUserXP derives XP from the lists, reviews and comments a user
// authored plus the upvotes those received, then stores xp and level.
func (m *Maintainer) RecomputeUserXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (XPSnapshot, error) {
	if err := m.Lock(ctx, tx, "users", userID); err != nil {
		return XPSnapshot{}, err
	}

	db := tx.WithContext(ctx)
	var lists, reviews, comments, commentUpvotes, reviewUpvotes int64

	if err := db.Model(&models.List{}).Where("user_id = ?", userID).Count(&lists).Error; err != nil {
		return XPSnapshot{}, fmt.Errorf("count lists: %w", err)
	}
	if err := db.Model(&models.Review{}).Where("user_id = ?", userID).Count(&reviews).Error; err != nil {
		return XPSnapshot{}, fmt.Errorf("count reviews: %w", err)
	}
	if err := db.Model(&models.Comment{}).Where("user_id = ?", userID).Count(&comments).Error; err != nil {
		return XPSnapshot{}, fmt.Errorf("count comments: %w", err)
	}
	err := db.Table("comment_votes").
		Joins("JOIN comments ON comments.id = comment_votes.target_id").
		Where("comments.user_id = ? AND comment_votes.value = ?", userID, 1).
		Count(&commentUpvotes).Error
	if err != nil {
		return XPSnapshot{}, fmt.Errorf("count comment upvotes: %w", err)
	}
	err = db.Table("review_votes").
		Joins("JOIN reviews ON reviews.id = review_votes.target_id").
		Where("reviews.user_id = ? AND review_votes.value = ?", userID, 1).
		Count(&reviewUpvotes).Error
	if err != nil {
		return XPSnapshot{}, fmt.Errorf("count review upvotes: %w", err)
	}

	xp := int(lists)*xpPerList +
		int(reviews)*xpPerReview +
		int(comments)*xpPerComment +
		int(commentUpvotes+reviewUpvotes)*xpPerUpvote
	snap := XPSnapshot{XP: xp, Level: LevelFor(xp)}

	err = db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"xp": snap.XP, "level": snap.Level}).Error
	if err != nil {
		return XPSnapshot{}, fmt.Errorf("store xp: %w", err)
	}
	return snap, nil
}

// RecomputeUsersXP recomputes several users in a stable order so concurrent
// callers take row locks in the same sequence.
func (m *Maintainer) RecomputeUsersXP(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	for _, id := range sortedUnique(userIDs) {
		if _, err := m.RecomputeUserXP(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}
