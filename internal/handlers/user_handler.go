package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates the profile for the identity in the bearer token.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	userID, err := requireActor(c)
	if err != nil {
		return err
	}

	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.userService.GetProfile(c.UserContext(), middleware.Actor(c), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := requireActor(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.GetProfile(c.UserContext(), userID, userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

func (h *UserHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, err := requireActor(c)
	if err != nil {
		return err
	}

	var req dto.UpdateSettingsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateSettings(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := h.userService.Delete(c.UserContext(), userID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Account deleted successfully"})
}
