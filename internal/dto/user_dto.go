package dto

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
)

const deletedUsername = "[deleted]"

// UserSummary is the author/actor block embedded in lists, comments and
// reviews.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Level       int       `json:"level"`
	Deleted     bool      `json:"deleted,omitempty"`
}

func NewUserSummary(u *models.User) UserSummary {
	if u == nil || u.Deleted {
		s := UserSummary{Username: deletedUsername, DisplayName: deletedUsername, Level: 1, Deleted: true}
		if u != nil {
			s.ID = u.ID
		}
		return s
	}
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Level:       u.Level,
	}
}

type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type UpdateSettingsRequest struct {
	DisplayName       *string               `json:"display_name"`
	Bio               *string               `json:"bio"`
	ProfileVisibility *models.Visibility    `json:"profile_visibility"`
	MessagePolicy     *models.MessagePolicy `json:"message_policy"`
}

type ProfileResponse struct {
	UserSummary
	Bio               string               `json:"bio"`
	ProfileVisibility models.Visibility    `json:"profile_visibility"`
	MessagePolicy     models.MessagePolicy `json:"message_policy,omitempty"`
	XP                int                  `json:"xp"`
	Followers         int64                `json:"followers"`
	Following         int64                `json:"following"`
	IsFollowing       bool                 `json:"is_following"`
}

type PageQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}
