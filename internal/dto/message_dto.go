package dto

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
}

type ConversationResponse struct {
	Messages []models.Message `json:"messages"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}

type UserPage struct {
	Users    []UserSummary `json:"users"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
}
