package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horunap/timetable-api/internal/models"
)

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.Assignment{
		ScheduleID:   "sched-1",
		CourseID:     "course-1",
		InstructorID: "ins-1",
		RoomID:       "room-1",
		Day:          models.WeekdayMonday,
		Block:        models.Block0800,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID, "missing IDs are filled in")
	assert.False(t, assignment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryExistsForInstructor(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM assignments WHERE schedule_id = $1 AND instructor_id = $2 AND day_of_week = $3 AND time_block = $4 LIMIT 1")).
		WithArgs("sched-1", "ins-1", models.WeekdayMonday, models.Block0800).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	busy, err := repo.ExistsForInstructor(context.Background(), "sched-1", "ins-1", models.WeekdayMonday, models.Block0800)
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryExistsForRoomEmptySlot(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM assignments WHERE schedule_id = $1 AND room_id = $2 AND day_of_week = $3 AND time_block = $4 LIMIT 1")).
		WithArgs("sched-1", "room-1", models.WeekdayFriday, models.Block1600).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	busy, err := repo.ExistsForRoom(context.Background(), "sched-1", "room-1", models.WeekdayFriday, models.Block1600)
	require.NoError(t, err)
	assert.False(t, busy, "no rows means the slot is free")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateSlot(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignments SET room_id = $1, day_of_week = $2, time_block = $3 WHERE id = $4")).
		WithArgs("room-2", models.WeekdayTuesday, models.Block1000, "a-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateSlot(context.Background(), "a-1", "room-2", models.WeekdayTuesday, models.Block1000))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteBySchedule(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE schedule_id = $1")).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 12))

	require.NoError(t, repo.DeleteBySchedule(context.Background(), "sched-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListDetailsBySchedule(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "schedule_id", "course_id", "instructor_id", "room_id", "day_of_week", "time_block", "active", "created_at",
		"course_code", "course_name", "course_capacity", "requires_lab",
		"instructor_name", "room_name", "room_capacity", "room_category", "room_has_projector",
	}).AddRow(
		"a-1", "sched-1", "course-1", "ins-1", "room-1", "MONDAY", "08:00-10:00", true, time.Now(),
		"MAT101", "Calculus", 30, false,
		"Dana Moss", "A-101", 40, "NORMAL", true,
	)
	mock.ExpectQuery("SELECT a.id, a.schedule_id").WithArgs("sched-1").WillReturnRows(rows)

	details, err := repo.ListDetailsBySchedule(context.Background(), "sched-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "MAT101", details[0].CourseCode)
	assert.Equal(t, 40, details[0].RoomCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryStatsBySchedule(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"total", "active_total", "rooms_used", "instructors_assigned"}).
		AddRow(16, 15, 6, 8)
	mock.ExpectQuery("SELECT COUNT").WithArgs("sched-1").WillReturnRows(rows)

	total, active, roomsUsed, instructors, err := repo.StatsBySchedule(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, 16, total)
	assert.Equal(t, 15, active)
	assert.Equal(t, 6, roomsUsed)
	assert.Equal(t, 8, instructors)
	assert.NoError(t, mock.ExpectationsWereMet())
}
