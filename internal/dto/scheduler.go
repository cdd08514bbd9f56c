package dto

import "github.com/horunap/timetable-api/internal/models"

// GenerateResponse summarizes one generate run: the placement counts from
// the generator plus the conflicts the follow-up detection pass recorded.
type GenerateResponse struct {
	ScheduleID        string               `json:"schedule_id"`
	State             models.ScheduleState `json:"state"`
	SessionsPlanned   int                  `json:"sessions_planned"`
	SessionsAssigned  int                  `json:"sessions_assigned"`
	SessionsUnplaced  int                  `json:"sessions_unplaced"`
	ConflictsDetected int                  `json:"conflicts_detected"`
	Conflicts         []models.Conflict    `json:"conflicts"`
	DurationMillis    int64                `json:"duration_ms"`
}

// ResolveResponse summarizes one resolver pass.
type ResolveResponse struct {
	ScheduleID string `json:"schedule_id"`
	Attempted  int    `json:"attempted"`
	Resolved   int    `json:"resolved"`
	Unresolved int    `json:"unresolved"`
}
