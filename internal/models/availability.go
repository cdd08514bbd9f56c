package models

import (
	"fmt"
	"time"
)

// AvailabilityKind marks a window as free or blocked time.
type AvailabilityKind string

const (
	AvailabilityAvailable   AvailabilityKind = "AVAILABLE"
	AvailabilityUnavailable AvailabilityKind = "UNAVAILABLE"
)

// AvailabilityWindow is an instructor-declared interval on one weekday.
// Times are clock strings ("08:00"); overlapping windows per instructor and
// day are permitted and not deduplicated.
type AvailabilityWindow struct {
	ID           string           `db:"id" json:"id"`
	InstructorID string           `db:"instructor_id" json:"instructor_id"`
	Day          Weekday          `db:"day_of_week" json:"day_of_week"`
	StartTime    string           `db:"start_time" json:"start_time"`
	EndTime      string           `db:"end_time" json:"end_time"`
	Kind         AvailabilityKind `db:"kind" json:"kind"`
	Note         string           `db:"note" json:"note"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// Validate enforces the start < end invariant and clock format.
func (w AvailabilityWindow) Validate() error {
	start, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q: %w", w.StartTime, err)
	}
	end, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q: %w", w.EndTime, err)
	}
	if !start.Before(end) {
		return fmt.Errorf("start time %s must precede end time %s", w.StartTime, w.EndTime)
	}
	if w.Kind != AvailabilityAvailable && w.Kind != AvailabilityUnavailable {
		return fmt.Errorf("unknown availability kind %q", w.Kind)
	}
	if _, err := ParseWeekday(string(w.Day)); err != nil {
		return err
	}
	return nil
}

// Covers reports whether the window fully contains the [start, end] clock
// range. Window times are validated first; malformed data never counts as
// coverage.
func (w AvailabilityWindow) Covers(start, end string) (bool, error) {
	winStart, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return false, fmt.Errorf("window start %q: %w", w.StartTime, err)
	}
	winEnd, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return false, fmt.Errorf("window end %q: %w", w.EndTime, err)
	}
	blockStart, err := time.Parse("15:04", start)
	if err != nil {
		return false, fmt.Errorf("block start %q: %w", start, err)
	}
	blockEnd, err := time.Parse("15:04", end)
	if err != nil {
		return false, fmt.Errorf("block end %q: %w", end, err)
	}
	return !winStart.After(blockStart) && !winEnd.Before(blockEnd), nil
}

// AvailabilityFilter describes query params for listing windows.
type AvailabilityFilter struct {
	InstructorID string
	Day          Weekday
	Kind         AvailabilityKind
	Page         int
	PageSize     int
}
