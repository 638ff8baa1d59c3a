package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge; its existence grants the follower access to the
// followee's followers-only content.
type Follow struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_follows_pair,priority:1;index" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_follows_pair,priority:2;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followee   User      `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (Follow) TableName() string {
	return "follows"
}
