package notify

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store persists events as notification rows.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Deliver(ctx context.Context, ev Event) error {
	n := models.Notification{
		RecipientID: ev.RecipientID,
		Kind:        string(ev.Kind),
		Message:     ev.Message,
		Link:        ev.Link,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// List returns a recipient's notifications, newest first.
func (s *Store) List(ctx context.Context, recipient uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("recipient_id = ?", recipient)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkAllRead marks every unread notification of recipient as read.
func (s *Store) MarkAllRead(ctx context.Context, recipient uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipient, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
