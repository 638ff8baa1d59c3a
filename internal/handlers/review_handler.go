package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req dto.CreateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	review, err := h.reviewService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	reviewID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	review, err := h.reviewService.Get(c.UserContext(), middleware.Actor(c), reviewID)
	if err != nil {
		return err
	}
	return c.JSON(review)
}

func (h *ReviewHandler) ListForGame(c *fiber.Ctx) error {
	gameID := c.Params("game_id")
	q := pageQuery(c)

	reviews, err := h.reviewService.ListForGame(c.UserContext(), middleware.Actor(c), gameID, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	reviewID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.reviewService.Delete(c.UserContext(), actor, reviewID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Review deleted successfully"})
}

func (h *ReviewHandler) Vote(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	reviewID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.reviewService.Vote(c.UserContext(), actor, reviewID, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
