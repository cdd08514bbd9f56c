package dto

import (
	"time"

	"github.com/horunap/timetable-api/internal/models"
)

// ExportRequest captures POST /schedules/:id/export payload.
type ExportRequest struct {
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID         string              `json:"id"`
	ScheduleID string              `json:"schedule_id"`
	Format     models.ExportFormat `json:"format"`
	Status     models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes job progress and, once completed, the signed
// download URL.
type ExportStatusResponse struct {
	ID          string              `json:"id"`
	ScheduleID  string              `json:"schedule_id"`
	Format      models.ExportFormat `json:"format"`
	Status      models.ExportStatus `json:"status"`
	Error       string              `json:"error,omitempty"`
	DownloadURL string              `json:"download_url,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}
