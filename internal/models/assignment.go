package models

import "time"

// Assignment books one course session into a (instructor, room, day, block)
// slot of a schedule. Three uniqueness tuples hold per schedule at all
// times: (instructor, day, block), (room, day, block), (course, day, block).
type Assignment struct {
	ID           string    `db:"id" json:"id"`
	ScheduleID   string    `db:"schedule_id" json:"schedule_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	Day          Weekday   `db:"day_of_week" json:"day_of_week"`
	Block        TimeBlock `db:"time_block" json:"time_block"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AssignmentDetail joins the referenced course, instructor and room fields
// the detector and API listings need.
type AssignmentDetail struct {
	Assignment
	CourseCode       string       `db:"course_code" json:"course_code"`
	CourseName       string       `db:"course_name" json:"course_name"`
	CourseCapacity   int          `db:"course_capacity" json:"course_capacity"`
	RequiresLab      bool         `db:"requires_lab" json:"requires_lab"`
	InstructorName   string       `db:"instructor_name" json:"instructor_name"`
	RoomName         string       `db:"room_name" json:"room_name"`
	RoomCapacity     int          `db:"room_capacity" json:"room_capacity"`
	RoomCategory     RoomCategory `db:"room_category" json:"room_category"`
	RoomHasProjector bool         `db:"room_has_projector" json:"room_has_projector"`
}

// AssignmentFilter describes query params for listing assignments.
type AssignmentFilter struct {
	ScheduleID   string
	CourseID     string
	InstructorID string
	RoomID       string
	Day          Weekday
	Block        TimeBlock
	Active       *bool
	Page         int
	PageSize     int
}
