package models

import "time"

// ConflictKind classifies a detected rule violation. The detector only
// produces CAPACITY and EQUIPMENT today; the remaining kinds are reserved
// for manual flagging and future checks.
type ConflictKind string

const (
	ConflictInstructor ConflictKind = "INSTRUCTOR"
	ConflictRoom       ConflictKind = "ROOM"
	ConflictCourse     ConflictKind = "COURSE"
	ConflictCapacity   ConflictKind = "CAPACITY"
	ConflictEquipment  ConflictKind = "EQUIPMENT"
)

// Conflict records a rule violation tied to one assignment.
type Conflict struct {
	ID           string       `db:"id" json:"id"`
	ScheduleID   string       `db:"schedule_id" json:"schedule_id"`
	AssignmentID string       `db:"assignment_id" json:"assignment_id"`
	Kind         ConflictKind `db:"kind" json:"kind"`
	Description  string       `db:"description" json:"description"`
	Resolved     bool         `db:"resolved" json:"resolved"`
	DetectedAt   time.Time    `db:"detected_at" json:"detected_at"`
	ResolvedAt   *time.Time   `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ConflictDetail joins the assignment slot and room/course figures the
// resolver needs to search replacement rooms.
type ConflictDetail struct {
	Conflict
	Day            Weekday      `db:"day_of_week" json:"day_of_week"`
	Block          TimeBlock    `db:"time_block" json:"time_block"`
	RoomID         string       `db:"room_id" json:"room_id"`
	RoomCategory   RoomCategory `db:"room_category" json:"room_category"`
	CourseCode     string       `db:"course_code" json:"course_code"`
	CourseCapacity int          `db:"course_capacity" json:"course_capacity"`
}

// ConflictFilter describes query params for listing conflicts.
type ConflictFilter struct {
	ScheduleID string
	Kind       ConflictKind
	Resolved   *bool
	Page       int
	PageSize   int
}
