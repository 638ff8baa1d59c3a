package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	GameID  string `json:"game_id"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

type ReviewResponse struct {
	ID        uuid.UUID   `json:"id"`
	Author    UserSummary `json:"author"`
	GameID    string      `json:"game_id"`
	Rating    int         `json:"rating"`
	Content   string      `json:"content"`
	VoteScore int         `json:"vote_score"`
	VoteCount int         `json:"vote_count"`
	UserVote  int         `json:"user_vote"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewReviewResponse(r *models.Review, author *models.User, userVote int) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		Author:    NewUserSummary(author),
		GameID:    r.GameID,
		Rating:    r.Rating,
		Content:   r.Content,
		VoteScore: r.VoteScore,
		VoteCount: r.VoteCount,
		UserVote:  userVote,
		CreatedAt: r.CreatedAt,
	}
}

type ReviewVoteResponse struct {
	Result    string `json:"result"`
	UserVote  int    `json:"user_vote"`
	VoteScore int    `json:"vote_score"`
	VoteCount int    `json:"vote_count"`
}
