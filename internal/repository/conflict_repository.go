package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/horunap/timetable-api/internal/models"
)

// ConflictRepository manages persistence for schedule conflicts.
type ConflictRepository struct {
	db *sqlx.DB
}

// NewConflictRepository constructs a new conflict repository.
func NewConflictRepository(db *sqlx.DB) *ConflictRepository {
	return &ConflictRepository{db: db}
}

const conflictColumns = "co.id, co.schedule_id, co.assignment_id, co.kind, co.description, co.resolved, co.detected_at, co.resolved_at"

// Create persists a conflict record.
func (r *ConflictRepository) Create(ctx context.Context, conflict *models.Conflict) error {
	if conflict.ID == "" {
		conflict.ID = uuid.NewString()
	}
	if conflict.DetectedAt.IsZero() {
		conflict.DetectedAt = time.Now().UTC()
	}

	const query = `INSERT INTO conflicts (id, schedule_id, assignment_id, kind, description, resolved, detected_at, resolved_at) VALUES (:id, :schedule_id, :assignment_id, :kind, :description, :resolved, :detected_at, :resolved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, conflict); err != nil {
		return fmt.Errorf("create conflict: %w", err)
	}
	return nil
}

// FindByID returns a conflict record by ID.
func (r *ConflictRepository) FindByID(ctx context.Context, id string) (*models.Conflict, error) {
	query := fmt.Sprintf("SELECT %s FROM conflicts co WHERE co.id = $1", conflictColumns)
	var conflict models.Conflict
	if err := r.db.GetContext(ctx, &conflict, query, id); err != nil {
		return nil, err
	}
	return &conflict, nil
}

// List returns conflicts matching filter criteria.
func (r *ConflictRepository) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error) {
	base := "FROM conflicts co WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ScheduleID != "" {
		conditions = append(conditions, fmt.Sprintf("co.schedule_id = $%d", len(args)+1))
		args = append(args, filter.ScheduleID)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("co.kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
	}
	if filter.Resolved != nil {
		conditions = append(conditions, fmt.Sprintf("co.resolved = $%d", len(args)+1))
		args = append(args, *filter.Resolved)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY co.detected_at DESC LIMIT %d OFFSET %d", conflictColumns, base, size, offset)
	var conflicts []models.Conflict
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list conflicts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count conflicts: %w", err)
	}
	return conflicts, total, nil
}

// ListUnresolvedDetails returns unresolved conflicts of one schedule joined
// with the assignment slot and room/course figures the resolver needs,
// oldest first.
func (r *ConflictRepository) ListUnresolvedDetails(ctx context.Context, scheduleID string) ([]models.ConflictDetail, error) {
	query := fmt.Sprintf(`SELECT %s,
		a.day_of_week, a.time_block, a.room_id,
		r.category AS room_category,
		c.code AS course_code, c.estimated_capacity AS course_capacity
		FROM conflicts co
		JOIN assignments a ON a.id = co.assignment_id
		JOIN rooms r ON r.id = a.room_id
		JOIN courses c ON c.id = a.course_id
		WHERE co.schedule_id = $1 AND co.resolved = FALSE
		ORDER BY co.detected_at ASC`, conflictColumns)
	var details []models.ConflictDetail
	if err := r.db.SelectContext(ctx, &details, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list unresolved conflicts: %w", err)
	}
	return details, nil
}

// MarkResolved flips the resolved flag and records the resolution time.
func (r *ConflictRepository) MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE conflicts SET resolved = TRUE, resolved_at = $1 WHERE id = $2`, resolvedAt, id); err != nil {
		return fmt.Errorf("mark conflict resolved: %w", err)
	}
	return nil
}

// DeleteBySchedule wipes every conflict of a schedule (regeneration).
func (r *ConflictRepository) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conflicts WHERE schedule_id = $1`, scheduleID); err != nil {
		return fmt.Errorf("wipe conflicts: %w", err)
	}
	return nil
}

// CountsBySchedule returns total and resolved conflict counts.
func (r *ConflictRepository) CountsBySchedule(ctx context.Context, scheduleID string) (total, resolved int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE resolved) AS resolved_total FROM conflicts WHERE schedule_id = $1`
	row := r.db.QueryRowxContext(ctx, query, scheduleID)
	if err := row.Scan(&total, &resolved); err != nil {
		return 0, 0, fmt.Errorf("conflict counts: %w", err)
	}
	return total, resolved, nil
}
