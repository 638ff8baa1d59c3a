package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
)

type CreateListRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Visibility  models.Visibility `json:"visibility"`
}

type UpdateListRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Visibility  *models.Visibility `json:"visibility"`
}

type ListResponse struct {
	ID            uuid.UUID         `json:"id"`
	Owner         UserSummary       `json:"owner"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Visibility    models.Visibility `json:"visibility"`
	AverageRating float64           `json:"average_rating"`
	RatingCount   int               `json:"rating_count"`
	MyRating      int               `json:"my_rating,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func NewListResponse(l *models.List, owner *models.User) ListResponse {
	return ListResponse{
		ID:            l.ID,
		Owner:         NewUserSummary(owner),
		Title:         l.Title,
		Description:   l.Description,
		Visibility:    l.Visibility,
		AverageRating: l.AverageRating,
		RatingCount:   l.RatingCount,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

type RateListRequest struct {
	Value int `json:"value"`
}

type RatingResponse struct {
	ListID        uuid.UUID `json:"list_id"`
	Value         int       `json:"value"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int64     `json:"rating_count"`
}

type CreateCommentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Content  string     `json:"content"`
}

type EditCommentRequest struct {
	Content string `json:"content"`
}

type VoteRequest struct {
	Value int `json:"value"`
}
