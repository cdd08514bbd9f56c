package models

import "time"

// ScheduleState tracks a schedule's lifecycle.
type ScheduleState string

const (
	ScheduleStateDraft     ScheduleState = "DRAFT"
	ScheduleStateGenerated ScheduleState = "GENERATED"
	ScheduleStateApproved  ScheduleState = "APPROVED"
	ScheduleStateActive    ScheduleState = "ACTIVE"
	ScheduleStateInactive  ScheduleState = "INACTIVE"
)

// Schedule is one planning unit: a semester timetable draft holding
// assignments and conflicts.
type Schedule struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Semester  string        `db:"semester" json:"semester"`
	State     ScheduleState `db:"state" json:"state"`
	CreatedBy string        `db:"created_by" json:"created_by"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// CanGenerate reports whether automatic generation is allowed in the
// current state. Approved and active schedules are immutable to the engine.
func (s Schedule) CanGenerate() bool {
	return s.State == ScheduleStateDraft || s.State == ScheduleStateGenerated
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	Semester  string
	State     ScheduleState
	CreatedBy string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ScheduleStats aggregates occupancy and conflict figures for one schedule.
// Occupancy is active assignments over the full 5-day x 6-block week.
type ScheduleStats struct {
	TotalAssignments    int       `json:"total_assignments"`
	ActiveAssignments   int       `json:"active_assignments"`
	TotalConflicts      int       `json:"total_conflicts"`
	ResolvedConflicts   int       `json:"resolved_conflicts"`
	OccupancyPercent    float64   `json:"occupancy_percent"`
	RoomsUsed           int       `json:"rooms_used"`
	InstructorsAssigned int       `json:"instructors_assigned"`
	GeneratedAt         time.Time `json:"generated_at"`
}
