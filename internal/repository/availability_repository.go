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

// AvailabilityRepository manages persistence for instructor availability
// windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = "id, instructor_id, day_of_week, start_time, end_time, kind, note, created_at, updated_at"

// List returns windows matching filter criteria.
func (r *AvailabilityRepository) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, int, error) {
	base := "FROM availability_windows WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY instructor_id, day_of_week, start_time LIMIT %d OFFSET %d", availabilityColumns, base, size, offset)
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list availability windows: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count availability windows: %w", err)
	}
	return windows, total, nil
}

// ListAvailableFor returns the AVAILABLE windows of one instructor on one
// day, ordered by start time. This is the generator's read path.
func (r *AvailabilityRepository) ListAvailableFor(ctx context.Context, instructorID string, day models.Weekday) ([]models.AvailabilityWindow, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_windows WHERE instructor_id = $1 AND day_of_week = $2 AND kind = $3 ORDER BY start_time ASC", availabilityColumns)
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, instructorID, day, models.AvailabilityAvailable); err != nil {
		return nil, fmt.Errorf("list available windows: %w", err)
	}
	return windows, nil
}

// FindByID returns a window record by ID.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.AvailabilityWindow, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_windows WHERE id = $1", availabilityColumns)
	var window models.AvailabilityWindow
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		return nil, err
	}
	return &window, nil
}

// Create persists a window record.
func (r *AvailabilityRepository) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if window.CreatedAt.IsZero() {
		window.CreatedAt = now
	}
	window.UpdatedAt = now

	const query = `INSERT INTO availability_windows (id, instructor_id, day_of_week, start_time, end_time, kind, note, created_at, updated_at) VALUES (:id, :instructor_id, :day_of_week, :start_time, :end_time, :kind, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("create availability window: %w", err)
	}
	return nil
}

// Update modifies a window record.
func (r *AvailabilityRepository) Update(ctx context.Context, window *models.AvailabilityWindow) error {
	window.UpdatedAt = time.Now().UTC()
	const query = `UPDATE availability_windows SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, kind = :kind, note = :note, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("update availability window: %w", err)
	}
	return nil
}

// Delete removes a window record.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete availability window: %w", err)
	}
	return nil
}

// ReplaceForInstructorDay swaps all windows of one instructor on one day in
// a single transaction (bulk availability update).
func (r *AvailabilityRepository) ReplaceForInstructorDay(ctx context.Context, instructorID string, day models.Weekday, windows []models.AvailabilityWindow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin availability replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability_windows WHERE instructor_id = $1 AND day_of_week = $2`, instructorID, day); err != nil {
		return fmt.Errorf("clear availability windows: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO availability_windows (id, instructor_id, day_of_week, start_time, end_time, kind, note, created_at, updated_at) VALUES (:id, :instructor_id, :day_of_week, :start_time, :end_time, :kind, :note, :created_at, :updated_at)`
	for i := range windows {
		windows[i].InstructorID = instructorID
		windows[i].Day = day
		if windows[i].ID == "" {
			windows[i].ID = uuid.NewString()
		}
		if windows[i].CreatedAt.IsZero() {
			windows[i].CreatedAt = now
		}
		windows[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, windows[i]); err != nil {
			return fmt.Errorf("insert availability window: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit availability replace: %w", err)
	}
	return nil
}
