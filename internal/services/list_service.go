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
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/moderation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListService struct {
	db         *gorm.DB
	cfg        *config.Config
	resolver   *access.Resolver
	maintainer *aggregate.Maintainer
	filter     *moderation.Filter
}

func NewListService(db *gorm.DB, cfg *config.Config) *ListService {
	return &ListService{
		db:         db,
		cfg:        cfg,
		resolver:   access.NewResolver(db),
		maintainer: aggregate.New(db),
		filter:     moderation.New(moderation.WithMaxLength(200)),
	}
}

func (s *ListService) Create(ctx context.Context, actor uuid.UUID, req *dto.CreateListRequest) (*dto.ListResponse, error) {
	if actor == access.Anonymous {
		return nil, apperr.Forbidden("sign in to create lists")
	}
	title, err := s.filter.Validate(req.Title)
	if err != nil {
		return nil, err
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, apperr.Invalid("unknown visibility %q", visibility)
	}

	list := models.List{
		UserID:      actor,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Visibility:  visibility,
	}
	var owner *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := findUser(ctx, tx, actor)
		if err != nil {
			return err
		}
		if u.Deleted {
			return apperr.Forbidden("account is deleted")
		}
		if err := tx.Create(&list).Error; err != nil {
			return fmt.Errorf("failed to create list: %w", err)
		}
		snap, err := s.maintainer.RecomputeUserXP(ctx, tx, actor)
		if err != nil {
			return err
		}
		u.XP, u.Level = snap.XP, snap.Level
		owner = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("list created", "list_id", list.ID, "user_id", actor)
	resp := dto.NewListResponse(&list, owner)
	return &resp, nil
}

// Get returns a list with its owner and the actor's own rating.
func (s *ListService) Get(ctx context.Context, actor, listID uuid.UUID) (*dto.ListResponse, error) {
	list, err := s.resolver.AuthorizeList(ctx, actor, listID)
	if err != nil {
		return nil, err
	}
	owner, err := findUser(ctx, s.db, list.UserID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewListResponse(list, owner)
	if actor != access.Anonymous {
		var rating models.ListRating
		err := s.db.WithContext(ctx).Where("user_id = ? AND list_id = ?", actor, listID).Take(&rating).Error
		switch {
		case err == nil:
			resp.MyRating = rating.Value
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to load rating: %w", err)
		}
	}
	return &resp, nil
}

// ListByUser returns the lists of userID that actor may see, newest first.
// The relations between the two users are loaded once and every list is
// decided against them.
func (s *ListService) ListByUser(ctx context.Context, actor, userID uuid.UUID, page, size int) ([]dto.ListResponse, error) {
	owner, err := findUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	page, size = pageBounds(s.cfg, page, size)

	var rel access.Relations
	if actor != access.Anonymous && actor != userID {
		if rel.Blocked, err = s.resolver.IsBlocked(ctx, actor, userID); err != nil {
			return nil, err
		}
		if rel.Following, err = s.resolver.IsFollowing(ctx, actor, userID); err != nil {
			return nil, err
		}
	}

	var visible []models.Visibility
	for _, v := range []models.Visibility{models.VisibilityPublic, models.VisibilityFollowersOnly, models.VisibilityPrivate} {
		if access.Decide(actor, access.Resource{OwnerID: userID, Visibility: v}, rel) {
			visible = append(visible, v)
		}
	}
	if len(visible) == 0 {
		return []dto.ListResponse{}, nil
	}

	var lists []models.List
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND visibility IN ?", userID, visible).
		Order("created_at DESC, id DESC").
		Limit(size).Offset(offset(page, size)).
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}

	out := make([]dto.ListResponse, 0, len(lists))
	for i := range lists {
		out = append(out, dto.NewListResponse(&lists[i], owner))
	}
	return out, nil
}

func (s *ListService) Update(ctx context.Context, actor, listID uuid.UUID, req *dto.UpdateListRequest) (*dto.ListResponse, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		title, err := s.filter.Validate(*req.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Visibility != nil {
		if !req.Visibility.Valid() {
			return nil, apperr.Invalid("unknown visibility %q", *req.Visibility)
		}
		updates["visibility"] = *req.Visibility
	}

	list, err := s.ownedList(ctx, s.db, actor, listID)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(list).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update list: %w", err)
		}
	}
	return s.Get(ctx, actor, listID)
}

// Delete removes a list with its ratings and comments. Commenters lose the
// XP those comments earned, so their XP is recomputed too.
func (s *ListService) Delete(ctx context.Context, actor, listID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.ownedList(ctx, tx, actor, listID)
		if err != nil {
			return err
		}

		var authors []uuid.UUID
		err = tx.Model(&models.Comment{}).Where("list_id = ?", listID).Distinct().Pluck("user_id", &authors).Error
		if err != nil {
			return fmt.Errorf("failed to load commenters: %w", err)
		}
		if err := tx.Delete(list).Error; err != nil {
			return fmt.Errorf("failed to delete list: %w", err)
		}
		return s.maintainer.RecomputeUsersXP(ctx, tx, append(authors, actor))
	})
	if err != nil {
		return err
	}
	slog.Info("list deleted", "list_id", listID, "user_id", actor)
	return nil
}

func (s *ListService) ownedList(ctx context.Context, db *gorm.DB, actor, listID uuid.UUID) (*models.List, error) {
	list, err := findList(ctx, db, listID)
	if err != nil {
		return nil, err
	}
	if list.UserID != actor {
		return nil, apperr.Forbidden("only the owner can change this list")
	}
	return list, nil
}
