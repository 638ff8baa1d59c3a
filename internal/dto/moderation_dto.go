package dto

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
)

type CreateReportRequest struct {
	ContentType models.ReportContentType `json:"content_type"`
	ContentID   uuid.UUID                `json:"content_id"`
	Reason      string                   `json:"reason"`
}

type ActionReportRequest struct {
	Status    models.ReportStatus `json:"status"`
	AdminNote string              `json:"admin_note"`
}

type ReportPage struct {
	Reports []models.Report `json:"reports"`
	Total   int64           `json:"total"`
}

type BlockUserRequest struct {
	BlockedID uuid.UUID `json:"blocked_id"`
}
