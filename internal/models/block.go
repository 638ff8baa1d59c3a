package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Block is stored directed but enforced in both directions.
type Block struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_blocks_pair,priority:1;index" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_blocks_pair,priority:2;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
	Blocker   User      `gorm:"foreignKey:BlockerID;constraint:OnDelete:CASCADE" json:"-"`
	Blocked   User      `gorm:"foreignKey:BlockedID;constraint:OnDelete:CASCADE" json:"-"`
}

func (b *Block) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (Block) TableName() string {
	return "blocks"
}
