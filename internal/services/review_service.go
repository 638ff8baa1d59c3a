package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/aggregate"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/votes"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAlreadyReviewed = apperr.Invalid("you already reviewed this game")

// ReviewService manages game reviews. Unlike comment scores, a review's
// vote_score and vote_count are stored on the row and recomputed by the
// aggregate maintainer on every vote change.
type ReviewService struct {
	db         *gorm.DB
	cfg        *config.Config
	resolver   *access.Resolver
	maintainer *aggregate.Maintainer
	ledger     *votes.Ledger
	emitter    notify.Emitter
	filter     *moderation.Filter
}

func NewReviewService(db *gorm.DB, cfg *config.Config, emitter notify.Emitter) *ReviewService {
	s := &ReviewService{
		db:         db,
		cfg:        cfg,
		resolver:   access.NewResolver(db),
		maintainer: aggregate.New(db),
		emitter:    emitter,
		filter:     moderation.New(moderation.WithMaxLength(10000)),
	}
	s.ledger = votes.NewLedger(db, s.voteKind())
	return s
}

func (s *ReviewService) voteKind() votes.Kind {
	return votes.Kind{
		Name:  "review",
		Table: "review_votes",
		Load: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (votes.Target, error) {
			if err := s.maintainer.Lock(ctx, tx, "reviews", id); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return nil, apperr.NotFound("review not found")
				}
				return nil, err
			}
			return findReview(ctx, tx, id)
		},
		Authorize: func(ctx context.Context, tx *gorm.DB, actor uuid.UUID, target votes.Target) error {
			ok, err := s.resolver.WithDB(tx).CanInteract(ctx, actor, target.OwnerID())
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Forbidden("cannot vote on this review")
			}
			return nil
		},
		AfterChange: func(ctx context.Context, tx *gorm.DB, _ uuid.UUID, target votes.Target, _ votes.Change) error {
			if _, err := s.maintainer.RecomputeReviewScore(ctx, tx, target.TargetID()); err != nil {
				return err
			}
			_, err := s.maintainer.RecomputeUserXP(ctx, tx, target.OwnerID())
			return err
		},
	}
}

func (s *ReviewService) Create(ctx context.Context, actor uuid.UUID, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if actor == access.Anonymous {
		return nil, apperr.Forbidden("sign in to review")
	}
	gameID := strings.TrimSpace(req.GameID)
	if gameID == "" || len(gameID) > 64 {
		return nil, apperr.Invalid("game_id is required")
	}
	if req.Rating < MinRating || req.Rating > MaxRating {
		return nil, apperr.Invalid("rating must be between %d and %d", MinRating, MaxRating)
	}
	content := strings.TrimSpace(req.Content)
	if content != "" {
		var err error
		if content, err = s.filter.Validate(content); err != nil {
			return nil, err
		}
	}

	review := models.Review{UserID: actor, GameID: gameID, Rating: req.Rating, Content: content}
	var author *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.resolver.WithDB(tx).ActiveActor(ctx, actor); err != nil {
			return err
		}
		u, err := findUser(ctx, tx, actor)
		if err != nil {
			return err
		}
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&review).Error
		})
		if database.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		if err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		snap, err := s.maintainer.RecomputeUserXP(ctx, tx, actor)
		if err != nil {
			return err
		}
		u.XP, u.Level = snap.XP, snap.Level
		author = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("review created", "review_id", review.ID, "user_id", actor, "game_id", gameID)
	resp := dto.NewReviewResponse(&review, author, 0)
	return &resp, nil
}

// Get returns a review unless a block separates actor and author.
func (s *ReviewService) Get(ctx context.Context, actor, reviewID uuid.UUID) (*dto.ReviewResponse, error) {
	review, err := findReview(ctx, s.db, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReview(ctx, actor, review); err != nil {
		return nil, err
	}
	author, err := findUser(ctx, s.db, review.UserID)
	if err != nil {
		return nil, err
	}
	mine, err := votes.UserVotes(ctx, s.db, "review_votes", actor, []uuid.UUID{review.ID})
	if err != nil {
		return nil, err
	}
	resp := dto.NewReviewResponse(review, author, mine[review.ID])
	return &resp, nil
}

// ListForGame returns a game's reviews by score, hiding authors on either
// side of a block with actor.
func (s *ReviewService) ListForGame(ctx context.Context, actor uuid.UUID, gameID string, page, size int) ([]dto.ReviewResponse, error) {
	page, size = pageBounds(s.cfg, page, size)
	q := s.db.WithContext(ctx).Where("game_id = ?", gameID)
	if actor != access.Anonymous {
		q = q.Where("user_id NOT IN (?)",
			s.db.Model(&models.Block{}).Select("blocked_id").Where("blocker_id = ?", actor)).
			Where("user_id NOT IN (?)",
				s.db.Model(&models.Block{}).Select("blocker_id").Where("blocked_id = ?", actor))
	}

	var reviews []models.Review
	err := q.Order("vote_score DESC, created_at DESC, id DESC").
		Limit(size).Offset(offset(page, size)).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	ids := make([]uuid.UUID, len(reviews))
	authorIDs := make([]uuid.UUID, len(reviews))
	for i := range reviews {
		ids[i] = reviews[i].ID
		authorIDs[i] = reviews[i].UserID
	}
	authors, err := findUsers(ctx, s.db, authorIDs)
	if err != nil {
		return nil, err
	}
	mine, err := votes.UserVotes(ctx, s.db, "review_votes", actor, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, dto.NewReviewResponse(&reviews[i], authors[reviews[i].UserID], mine[reviews[i].ID]))
	}
	return out, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor, reviewID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := findReview(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if review.UserID != actor {
			return apperr.Forbidden("only the author can delete this review")
		}
		if err := tx.Delete(review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		_, err = s.maintainer.RecomputeUserXP(ctx, tx, actor)
		return err
	})
}

// Vote toggles actor's vote on a review; the stored score follows.
func (s *ReviewService) Vote(ctx context.Context, actor, reviewID uuid.UUID, value int) (*dto.ReviewVoteResponse, error) {
	out, err := s.ledger.SubmitVote(ctx, actor, reviewID, value)
	if err != nil {
		return nil, err
	}

	review, err := findReview(ctx, s.db, reviewID)
	if err != nil {
		return nil, err
	}
	if out.Value == votes.Up && out.Result != votes.Removed {
		s.emitter.Emit(ctx, notify.Event{
			RecipientID: review.UserID,
			Kind:        notify.KindReviewVote,
			Message:     "Someone found your review helpful",
			Link:        "/reviews/" + review.ID.String(),
		})
	}
	return &dto.ReviewVoteResponse{
		Result:    string(out.Result),
		UserVote:  out.Value,
		VoteScore: review.VoteScore,
		VoteCount: review.VoteCount,
	}, nil
}

func (s *ReviewService) authorizeReview(ctx context.Context, actor uuid.UUID, review *models.Review) error {
	ok, err := s.resolver.CanView(ctx, actor, access.Resource{OwnerID: review.UserID, Visibility: models.VisibilityPublic})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("review is not visible to you")
	}
	return nil
}

func findReview(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("review not found")
		}
		return nil, fmt.Errorf("load review: %w", err)
	}
	return &review, nil
}
