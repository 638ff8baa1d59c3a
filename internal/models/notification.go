package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is the stored form of an emitted notification event.
type Notification struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	RecipientID uuid.UUID `gorm:"type:char(36);not null;index" json:"recipient_id"`
	Kind        string    `gorm:"size:50;not null" json:"kind"`
	Message     string    `gorm:"size:500;not null" json:"message"`
	Link        string    `gorm:"size:255" json:"link"`
	Read        bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}
