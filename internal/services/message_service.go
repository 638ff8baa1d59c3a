package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService struct {
	db       *gorm.DB
	cfg      *config.Config
	resolver *access.Resolver
	emitter  notify.Emitter
	filter   *moderation.Filter
	now      func() time.Time
}

func NewMessageService(db *gorm.DB, cfg *config.Config, emitter notify.Emitter) *MessageService {
	return &MessageService{
		db:       db,
		cfg:      cfg,
		resolver: access.NewResolver(db),
		emitter:  emitter,
		filter:   moderation.New(moderation.AllowLinks(), moderation.WithMaxLength(2000)),
		now:      time.Now,
	}
}

// Send delivers a direct message when the recipient's message policy and the
// block wall allow it.
func (s *MessageService) Send(ctx context.Context, sender uuid.UUID, req *dto.SendMessageRequest) (*models.Message, error) {
	if sender == access.Anonymous {
		return nil, apperr.Forbidden("sign in to send messages")
	}
	if sender == req.RecipientID {
		return nil, apperr.Invalid("cannot message yourself")
	}
	content, err := s.filter.Validate(req.Content)
	if err != nil {
		return nil, err
	}

	ok, err := s.resolver.CanMessage(ctx, sender, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("this user does not accept messages from you")
	}

	msg := models.Message{
		SenderID:    sender,
		RecipientID: req.RecipientID,
		Content:     content,
		CreatedAt:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.emitter.Emit(ctx, notify.Event{
		RecipientID: req.RecipientID,
		Kind:        notify.KindMessage,
		Message:     "You have a new message",
		Link:        "/messages/" + sender.String(),
	})
	return &msg, nil
}

// Conversation pages through the messages between actor and other, newest
// first.
func (s *MessageService) Conversation(ctx context.Context, actor, other uuid.UUID, page, size int) (*dto.ConversationResponse, error) {
	if actor == access.Anonymous {
		return nil, apperr.Forbidden("sign in to read messages")
	}
	if _, err := findUser(ctx, s.db, other); err != nil {
		return nil, err
	}
	page, size = pageBounds(s.cfg, page, size)

	between := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Message{}).
			Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", actor, other, other, actor)
	}

	var total int64
	if err := between().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	messages := []models.Message{}
	err := between().Order("created_at DESC, id DESC").Limit(size).Offset(offset(page, size)).Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return &dto.ConversationResponse{Messages: messages, Page: page, PageSize: size, Total: total}, nil
}

// MarkRead stamps every unread message from other to actor.
func (s *MessageService) MarkRead(ctx context.Context, actor, other uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND read_at IS NULL", other, actor).
		Update("read_at", s.now())
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
