package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	sender, err := requireActor(c)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.messageService.Send(c.UserContext(), sender, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	other, err := paramID(c, "user_id")
	if err != nil {
		return err
	}
	q := pageQuery(c)

	conv, err := h.messageService.Conversation(c.UserContext(), actor, other, q.Page, q.PageSize)
	if err != nil {
		return err
	}
	return c.JSON(conv)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	other, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	updated, err := h.messageService.MarkRead(c.UserContext(), actor, other)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": updated})
}
