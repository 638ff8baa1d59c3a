package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/notify"
	"github.com/gofiber/fiber/v2"
)

const maxNotifications = 100

type NotificationHandler struct {
	store *notify.Store
}

func NewNotificationHandler(store *notify.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	recipient, err := requireActor(c)
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 50)
	if limit <= 0 || limit > maxNotifications {
		limit = maxNotifications
	}

	items, err := h.store.List(c.UserContext(), recipient, c.QueryBool("unread"), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"notifications": items})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	recipient, err := requireActor(c)
	if err != nil {
		return err
	}

	updated, err := h.store.MarkAllRead(c.UserContext(), recipient)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": updated})
}
