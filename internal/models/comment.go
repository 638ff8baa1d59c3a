package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to a list, either directly or through ParentCommentID.
// Deleting a comment cascades to its replies and their votes in the store.
type Comment struct {
	ID              uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	ListID          uuid.UUID  `gorm:"type:char(36);not null;index:idx_comments_list_parent,priority:1" json:"list_id"`
	UserID          uuid.UUID  `gorm:"type:char(36);not null;index" json:"user_id"`
	ParentCommentID *uuid.UUID `gorm:"type:char(36);index:idx_comments_list_parent,priority:2" json:"parent_comment_id"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	List            List       `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"-"`
	Author          User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Parent          *Comment   `gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) TargetID() uuid.UUID { return c.ID }
func (c *Comment) OwnerID() uuid.UUID  { return c.UserID }

// CommentVote is one user's +1/-1 on a comment.
type CommentVote struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_comment_votes_user_target,priority:1" json:"user_id"`
	TargetID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_comment_votes_user_target,priority:2;index" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Comment   Comment   `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (v *CommentVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (CommentVote) TableName() string {
	return "comment_votes"
}
