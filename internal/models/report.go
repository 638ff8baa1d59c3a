package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportContentType string

const (
	ReportUser    ReportContentType = "user"
	ReportList    ReportContentType = "list"
	ReportComment ReportContentType = "comment"
	ReportReview  ReportContentType = "review"
	ReportMessage ReportContentType = "message"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportActioned  ReportStatus = "actioned"
	ReportDismissed ReportStatus = "dismissed"
)

// Report flags user content for moderator review.
type Report struct {
	ID          uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	ReporterID  uuid.UUID         `gorm:"type:char(36);not null;index" json:"reporter_id"`
	ContentType ReportContentType `gorm:"not null;size:20;index:idx_reports_content,priority:1" json:"content_type"`
	ContentID   uuid.UUID         `gorm:"type:char(36);not null;index:idx_reports_content,priority:2" json:"content_id"`
	Reason      string            `gorm:"not null;size:500" json:"reason"`
	Status      ReportStatus      `gorm:"not null;default:'pending';size:20;index" json:"status"`
	AdminNote   string            `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Reporter    User              `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = ReportPending
	}
	return nil
}

func (Report) TableName() string {
	return "reports"
}
