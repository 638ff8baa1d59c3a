package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken   = apperr.Conflict("username already taken")
	ErrInvalidUsername = apperr.Invalid("username must be 3-50 letters, digits or underscores")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

type UserService struct {
	db       *gorm.DB
	resolver *access.Resolver
	now      func() time.Time
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, resolver: access.NewResolver(db), now: time.Now}
}

// Create registers the profile row for an identity issued elsewhere. id may
// be uuid.Nil to let the store assign one.
func (s *UserService) Create(ctx context.Context, id uuid.UUID, req *dto.CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := models.User{
		ID:          id,
		Username:    username,
		Email:       strings.TrimSpace(req.Email),
		DisplayName: displayName,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user created", "user_id", user.ID)
	return &user, nil
}

// GetProfile returns a user's profile when actor may see it. The message
// policy is only included for the user themself.
func (s *UserService) GetProfile(ctx context.Context, actor, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.resolver.AuthorizeProfile(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{
		UserSummary:       dto.NewUserSummary(user),
		Bio:               user.Bio,
		ProfileVisibility: user.ProfileVisibility,
		XP:                user.XP,
	}
	if actor == user.ID {
		resp.MessagePolicy = user.MessagePolicy
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Follow{}).Where("followee_id = ?", user.ID).Count(&resp.Followers).Error; err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&resp.Following).Error; err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	if actor != access.Anonymous && actor != user.ID {
		if resp.IsFollowing, err = s.resolver.IsFollowing(ctx, actor, user.ID); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *UserService) UpdateSettings(ctx context.Context, actor uuid.UUID, req *dto.UpdateSettingsRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || len(name) > 100 {
			return nil, apperr.Invalid("display name must be 1-100 characters")
		}
		updates["display_name"] = name
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			return nil, apperr.Invalid("bio must be at most 500 characters")
		}
		updates["bio"] = *req.Bio
	}
	if req.ProfileVisibility != nil {
		if !req.ProfileVisibility.Valid() {
			return nil, apperr.Invalid("unknown profile visibility %q", *req.ProfileVisibility)
		}
		updates["profile_visibility"] = *req.ProfileVisibility
	}
	if req.MessagePolicy != nil {
		if !req.MessagePolicy.Valid() {
			return nil, apperr.Invalid("unknown message policy %q", *req.MessagePolicy)
		}
		updates["message_policy"] = *req.MessagePolicy
	}

	db := s.db.WithContext(ctx)
	user, err := s.activeUser(ctx, db, actor)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return s.activeUser(ctx, db, actor)
}

// Delete anonymizes the account and removes its follow edges. Content the
// user authored stays and is shown as written by a deleted user.
func (s *UserService) Delete(ctx context.Context, actor uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.activeUser(ctx, tx, actor)
		if err != nil {
			return err
		}

		now := s.now()
		err = tx.Model(user).Updates(map[string]interface{}{
			"username":       "deleted_" + user.ID.String(),
			"email":          "",
			"display_name":   "",
			"bio":            "",
			"deleted":        true,
			"deleted_at":     now,
			"message_policy": models.MessageNone,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to anonymize user: %w", err)
		}
		err = tx.Where("follower_id = ? OR followee_id = ?", actor, actor).Delete(&models.Follow{}).Error
		if err != nil {
			return fmt.Errorf("failed to drop follows: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", actor)
	return nil
}

func (s *UserService) activeUser(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.User, error) {
	if id == access.Anonymous {
		return nil, apperr.Forbidden("sign in first")
	}
	user, err := findUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}
