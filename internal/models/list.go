package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List is a curated game list. AverageRating and RatingCount are owned by
// the aggregate maintainer and must not be written anywhere else.
type List struct {
	ID            uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:char(36);not null;index" json:"user_id"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Visibility    Visibility `gorm:"size:20;not null;default:'public'" json:"visibility"`
	AverageRating float64    `gorm:"not null;default:0" json:"average_rating"`
	RatingCount   int        `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Owner         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Visibility == "" {
		l.Visibility = VisibilityPublic
	}
	return nil
}

func (List) TableName() string {
	return "lists"
}

// ListRating is one user's score for a list.
type ListRating struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_list_ratings_user_list,priority:1" json:"user_id"`
	ListID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_list_ratings_user_list,priority:2;index" json:"list_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	List      List      `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *ListRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ListRating) TableName() string {
	return "list_ratings"
}
