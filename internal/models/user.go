package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility controls who may see a profile or a list.
type Visibility string

const (
	VisibilityPublic        Visibility = "public"
	VisibilityFollowersOnly Visibility = "followers_only"
	VisibilityPrivate       Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowersOnly, VisibilityPrivate:
		return true
	}
	return false
}

// MessagePolicy controls who may open a conversation with a user.
type MessagePolicy string

const (
	MessageEveryone      MessagePolicy = "everyone"
	MessageFollowingOnly MessagePolicy = "following_only"
	MessageNone          MessagePolicy = "none"
)

func (p MessagePolicy) Valid() bool {
	switch p {
	case MessageEveryone, MessageFollowingOnly, MessageNone:
		return true
	}
	return false
}

// User is never hard-deleted: deletion anonymizes the row so reviews and
// lists keep a valid owner.
type User struct {
	ID                uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	Username          string        `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email             string        `gorm:"size:255" json:"-"`
	DisplayName       string        `gorm:"size:100" json:"display_name"`
	Bio               string        `gorm:"size:500" json:"bio"`
	ProfileVisibility Visibility    `gorm:"size:20;not null;default:'public'" json:"profile_visibility"`
	MessagePolicy     MessagePolicy `gorm:"size:20;not null;default:'everyone'" json:"message_policy"`
	Deleted           bool          `gorm:"not null;default:false;index" json:"deleted"`
	DeletedAt         *time.Time    `json:"-"`
	XP                int           `gorm:"not null;default:0" json:"xp"`
	Level             int           `gorm:"not null;default:1" json:"level"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ProfileVisibility == "" {
		u.ProfileVisibility = VisibilityPublic
	}
	if u.MessagePolicy == "" {
		u.MessagePolicy = MessageEveryone
	}
	if u.Level == 0 {
		u.Level = 1
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
