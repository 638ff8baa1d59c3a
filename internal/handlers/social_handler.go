package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SocialHandler struct {
	socialService *services.SocialService
}

func NewSocialHandler(socialService *services.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

func (h *SocialHandler) Follow(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	target, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.socialService.Follow(c.UserContext(), actor, target); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "User followed successfully"})
}

func (h *SocialHandler) Unfollow(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	target, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.socialService.Unfollow(c.UserContext(), actor, target); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User unfollowed successfully"})
}

func (h *SocialHandler) Followers(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	q := pageQuery(c)

	page, err := h.socialService.Followers(c.UserContext(), middleware.Actor(c), userID, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *SocialHandler) Following(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	q := pageQuery(c)

	page, err := h.socialService.Following(c.UserContext(), middleware.Actor(c), userID, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *SocialHandler) BlockUser(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req dto.BlockUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.socialService.Block(c.UserContext(), actor, req.BlockedID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User blocked successfully"})
}

func (h *SocialHandler) UnblockUser(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	blockedID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.socialService.Unblock(c.UserContext(), actor, blockedID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User unblocked successfully"})
}

func (h *SocialHandler) Blocked(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	users, err := h.socialService.Blocked(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}
