package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := requireActor(c)
	if err != nil {
		return err
	}

	var req dto.CreateReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	report, err := h.moderationService.CreateReport(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	status := models.ReportStatus(c.Query("status", ""))
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	reports, total, err := h.moderationService.ListReports(c.UserContext(), status, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.ReportPage{Reports: reports, Total: total})
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.ActionReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.moderationService.ActionReport(c.UserContext(), reportID, &req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Report updated successfully"})
}
