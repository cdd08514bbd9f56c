package models

import "time"

// ExportFormat selects the rendered artifact type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus tracks an export job through the queue.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusRunning   ExportStatus = "RUNNING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportJob is the in-memory record of one timetable export. Jobs do not
// survive a restart; the rendered files on disk do.
type ExportJob struct {
	ID           string       `json:"id"`
	ScheduleID   string       `json:"schedule_id"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	Error        string       `json:"error,omitempty"`
	RelativePath string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}
