package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a user's public write-up of a catalogue game. VoteScore and
// VoteCount are recomputed from review_votes on every vote change.
type Review struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_reviews_user_game,priority:1" json:"user_id"`
	GameID    string    `gorm:"size:64;not null;uniqueIndex:idx_reviews_user_game,priority:2;index" json:"game_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Content   string    `gorm:"type:text" json:"content"`
	VoteScore int       `gorm:"not null;default:0" json:"vote_score"`
	VoteCount int       `gorm:"not null;default:0" json:"vote_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) TargetID() uuid.UUID { return r.ID }
func (r *Review) OwnerID() uuid.UUID  { return r.UserID }

// ReviewVote is one user's +1/-1 on a review.
type ReviewVote struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_review_votes_user_target,priority:1" json:"user_id"`
	TargetID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_review_votes_user_target,priority:2;index" json:"review_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Review    Review    `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (v *ReviewVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (ReviewVote) TableName() string {
	return "review_votes"
}
