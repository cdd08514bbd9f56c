package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/horunap/timetable-api/internal/models"
)

// AssignmentRepository manages persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "a.id, a.schedule_id, a.course_id, a.instructor_id, a.room_id, a.day_of_week, a.time_block, a.active, a.created_at"

const assignmentDetailQuery = `SELECT ` + assignmentColumns + `,
	c.code AS course_code, c.name AS course_name, c.estimated_capacity AS course_capacity, c.requires_lab,
	u.full_name AS instructor_name,
	r.name AS room_name, r.capacity AS room_capacity, r.category AS room_category, r.has_projector AS room_has_projector
	FROM assignments a
	JOIN courses c ON c.id = a.course_id
	JOIN users u ON u.id = a.instructor_id
	JOIN rooms r ON r.id = a.room_id`

// Create persists an assignment record.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO assignments (id, schedule_id, course_id, instructor_id, room_id, day_of_week, time_block, active, created_at) VALUES (:id, :schedule_id, :course_id, :instructor_id, :room_id, :day_of_week, :time_block, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment record by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments a WHERE a.id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListDetailsBySchedule returns all assignments of a schedule with joined
// course, instructor and room fields, ordered by day then block.
func (r *AssignmentRepository) ListDetailsBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error) {
	query := assignmentDetailQuery + ` WHERE a.schedule_id = $1 ORDER BY a.day_of_week, a.time_block`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list assignment details: %w", err)
	}
	return details, nil
}

// List returns assignment details matching filter criteria.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	base := " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ScheduleID != "" {
		conditions = append(conditions, fmt.Sprintf("a.schedule_id = $%d", len(args)+1))
		args = append(args, filter.ScheduleID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("a.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("a.instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("a.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("a.day_of_week = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if filter.Block != "" {
		conditions = append(conditions, fmt.Sprintf("a.time_block = $%d", len(args)+1))
		args = append(args, filter.Block)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("a.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s%s ORDER BY a.day_of_week, a.time_block LIMIT %d OFFSET %d", assignmentDetailQuery, base, size, offset)
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM assignments a" + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return details, total, nil
}

// ExistsForInstructor reports whether the instructor already holds an
// assignment at the slot within the schedule.
func (r *AssignmentRepository) ExistsForInstructor(ctx context.Context, scheduleID, instructorID string, day models.Weekday, block models.TimeBlock) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM assignments WHERE schedule_id = $1 AND instructor_id = $2 AND day_of_week = $3 AND time_block = $4 LIMIT 1`, scheduleID, instructorID, day, block)
}

// ExistsForRoom reports whether the room is already occupied at the slot
// within the schedule.
func (r *AssignmentRepository) ExistsForRoom(ctx context.Context, scheduleID, roomID string, day models.Weekday, block models.TimeBlock) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM assignments WHERE schedule_id = $1 AND room_id = $2 AND day_of_week = $3 AND time_block = $4 LIMIT 1`, scheduleID, roomID, day, block)
}

// ExistsForCourse reports whether the course already occupies the slot
// within the schedule.
func (r *AssignmentRepository) ExistsForCourse(ctx context.Context, scheduleID, courseID string, day models.Weekday, block models.TimeBlock) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM assignments WHERE schedule_id = $1 AND course_id = $2 AND day_of_week = $3 AND time_block = $4 LIMIT 1`, scheduleID, courseID, day, block)
}

func (r *AssignmentRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment occupancy: %w", err)
	}
	return true, nil
}

// UpdateRoom reassigns the room of one assignment.
func (r *AssignmentRepository) UpdateRoom(ctx context.Context, assignmentID, roomID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE assignments SET room_id = $1 WHERE id = $2`, roomID, assignmentID); err != nil {
		return fmt.Errorf("update assignment room: %w", err)
	}
	return nil
}

// UpdateSlot moves one assignment to a different room and slot.
func (r *AssignmentRepository) UpdateSlot(ctx context.Context, assignmentID, roomID string, day models.Weekday, block models.TimeBlock) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE assignments SET room_id = $1, day_of_week = $2, time_block = $3 WHERE id = $4`,
		roomID, day, block, assignmentID); err != nil {
		return fmt.Errorf("update assignment slot: %w", err)
	}
	return nil
}

// SetActive toggles the active flag of one assignment.
func (r *AssignmentRepository) SetActive(ctx context.Context, assignmentID string, active bool) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE assignments SET active = $1 WHERE id = $2`, active, assignmentID); err != nil {
		return fmt.Errorf("set assignment active: %w", err)
	}
	return nil
}

// Delete removes one assignment record.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// DeleteBySchedule wipes every assignment of a schedule (regeneration).
func (r *AssignmentRepository) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE schedule_id = $1`, scheduleID); err != nil {
		return fmt.Errorf("wipe assignments: %w", err)
	}
	return nil
}

// StatsBySchedule aggregates assignment counts for schedule statistics.
func (r *AssignmentRepository) StatsBySchedule(ctx context.Context, scheduleID string) (total, active, roomsUsed, instructorsAssigned int, err error) {
	const query = `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE active) AS active_total,
		COUNT(DISTINCT room_id) AS rooms_used,
		COUNT(DISTINCT instructor_id) AS instructors_assigned
		FROM assignments WHERE schedule_id = $1`
	row := r.db.QueryRowxContext(ctx, query, scheduleID)
	if err := row.Scan(&total, &active, &roomsUsed, &instructorsAssigned); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("assignment stats: %w", err)
	}
	return total, active, roomsUsed, instructorsAssigned, nil
}
