package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ListHandler struct {
	listService   *services.ListService
	ratingService *services.RatingService
}

func NewListHandler(listService *services.ListService, ratingService *services.RatingService) *ListHandler {
	return &ListHandler{listService: listService, ratingService: ratingService}
}

func (h *ListHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req dto.CreateListRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	list, err := h.listService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

func (h *ListHandler) Get(c *fiber.Ctx) error {
	listID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	list, err := h.listService.Get(c.UserContext(), middleware.Actor(c), listID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *ListHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	q := pageQuery(c)

	lists, err := h.listService.ListByUser(c.UserContext(), middleware.Actor(c), userID, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"lists": lists})
}

func (h *ListHandler) Update(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	listID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateListRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	list, err := h.listService.Update(c.UserContext(), actor, listID, &req)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *ListHandler) Delete(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	listID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.listService.Delete(c.UserContext(), actor, listID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "List deleted successfully"})
}

func (h *ListHandler) Rate(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	listID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.RateListRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	rating, err := h.ratingService.Submit(c.UserContext(), actor, listID, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(rating)
}

func (h *ListHandler) RemoveRating(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	listID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	rating, err := h.ratingService.Remove(c.UserContext(), actor, listID)
	if err != nil {
		return err
	}
	return c.JSON(rating)
}
