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

func newRoomRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "capacity", "category", "building", "floor", "has_projector", "has_computers", "active", "created_at", "updated_at"})
}

func TestRoomRepositoryListResolutionCandidatesOrdering(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := roomRows().
		AddRow("room-2", "B-101", 35, "NORMAL", "B", "1", true, false, true, now, now).
		AddRow("room-3", "C-201", 60, "NORMAL", "C", "2", false, false, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("capacity >= $1 AND category = $2 AND id <> $3 ORDER BY capacity ASC, id ASC")).
		WithArgs(30, models.RoomCategoryNormal, "room-1").
		WillReturnRows(rows)

	rooms, err := repo.ListResolutionCandidates(context.Background(), 30, models.RoomCategoryNormal, "room-1")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "room-2", rooms[0].ID, "smallest capacity comes first")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListFreeAt(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := roomRows().
		AddRow("room-1", "A-101", 40, "NORMAL", "A", "1", true, false, true, now, now)
	mock.ExpectQuery("NOT EXISTS").
		WithArgs("sched-1", models.WeekdayMonday, models.Block0800).
		WillReturnRows(rows)

	rooms, err := repo.ListFreeAt(context.Background(), "sched-1", models.WeekdayMonday, models.Block0800)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "A-101", rooms[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := roomRows().
		AddRow("room-1", "A-101", 40, "NORMAL", "A", "1", true, false, true, now, now).
		AddRow("room-2", "LAB-1", 25, "LAB", "A", "2", true, true, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active = TRUE ORDER BY name ASC")).
		WillReturnRows(rows)

	rooms, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.Equal(t, models.RoomCategoryLab, rooms[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Name: "A-101", Capacity: 40, Category: models.RoomCategoryNormal, Active: true}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
