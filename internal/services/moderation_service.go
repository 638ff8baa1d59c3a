package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrReportNotFound = apperr.NotFound("report not found")

var reportTables = map[models.ReportContentType]string{
	models.ReportUser:    "users",
	models.ReportList:    "lists",
	models.ReportComment: "comments",
	models.ReportReview:  "reviews",
	models.ReportMessage: "messages",
}

// ModerationService queues user reports for moderators.
type ModerationService struct {
	db *gorm.DB
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

func (s *ModerationService) CreateReport(ctx context.Context, reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	table, ok := reportTables[req.ContentType]
	if !ok {
		return nil, apperr.Invalid("invalid content_type: must be user, list, comment, review or message")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" || len(reason) > 500 {
		return nil, apperr.Invalid("reason is required")
	}

	db := s.db.WithContext(ctx)
	var found int64
	if err := db.Table(table).Where("id = ?", req.ContentID).Count(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to check reported content: %w", err)
	}
	if found == 0 {
		return nil, apperr.NotFound("reported %s not found", req.ContentType)
	}

	report := models.Report{
		ReporterID:  reporterID,
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		Reason:      reason,
	}
	if err := db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	slog.Info("report created", "report_id", report.ID, "content_type", report.ContentType, "content_id", report.ContentID)
	return &report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load reports: %w", err)
	}
	return reports, total, nil
}

func (s *ModerationService) ActionReport(ctx context.Context, reportID uuid.UUID, req *dto.ActionReportRequest) error {
	switch req.Status {
	case models.ReportReviewed, models.ReportActioned, models.ReportDismissed:
	default:
		return apperr.Invalid("invalid status: must be reviewed, actioned, or dismissed")
	}

	result := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":     req.Status,
			"admin_note": req.AdminNote,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}
