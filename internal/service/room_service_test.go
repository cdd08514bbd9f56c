package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

func newRoomFixture(existing ...models.Room) (*RoomService, *roomCrudStub) {
	repo := &roomCrudStub{items: existing}
	svc := NewRoomService(repo, nil, zap.NewNop())
	return svc, repo
}

func TestRoomServiceCreateDefaultsActive(t *testing.T) {
	svc, repo := newRoomFixture()

	room, err := svc.Create(context.Background(), CreateRoomRequest{
		Name:         "A-101",
		Capacity:     60,
		Category:     "NORMAL",
		Building:     "A",
		HasProjector: true,
	})

	require.NoError(t, err)
	assert.True(t, room.Active)
	assert.Equal(t, models.RoomCategoryNormal, room.Category)
	require.Len(t, repo.items, 1)
}

func TestRoomServiceCreateRejectsUnknownCategory(t *testing.T) {
	svc, _ := newRoomFixture()

	_, err := svc.Create(context.Background(), CreateRoomRequest{
		Name:     "AUD-1",
		Capacity: 300,
		Category: "AUDITORIUM",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceUpdateCanDeactivate(t *testing.T) {
	svc, _ := newRoomFixture(models.Room{ID: "room-1", Name: "LAB-2", Capacity: 30, Category: models.RoomCategoryLab, Active: true})
	inactive := false

	room, err := svc.Update(context.Background(), "room-1", UpdateRoomRequest{
		Name:     "LAB-2",
		Capacity: 30,
		Category: "LAB",
		Active:   &inactive,
	})

	require.NoError(t, err)
	assert.False(t, room.Active)
}

func TestRoomServiceListAvailableValidatesSlot(t *testing.T) {
	svc, _ := newRoomFixture()

	_, err := svc.ListAvailable(context.Background(), "sched-1", "MONDAY", "25:00-26:00")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ListAvailable(context.Background(), "", models.WeekdayMonday, models.Block0800)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceListAvailableDelegates(t *testing.T) {
	svc, repo := newRoomFixture(models.Room{ID: "room-1", Name: "A-101", Capacity: 60, Category: models.RoomCategoryNormal, Active: true})

	rooms, err := svc.ListAvailable(context.Background(), "sched-1", models.WeekdayMonday, models.Block0800)

	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "sched-1", repo.lastScheduleID)
	assert.Equal(t, models.WeekdayMonday, repo.lastDay)
}

func TestRoomServiceGetNotFound(t *testing.T) {
	svc, _ := newRoomFixture()

	_, err := svc.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type roomCrudStub struct {
	items          []models.Room
	lastScheduleID string
	lastDay        models.Weekday
}

func (s *roomCrudStub) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	return s.items, len(s.items), nil
}

func (s *roomCrudStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			room := s.items[i]
			return &room, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *roomCrudStub) ListFreeAt(ctx context.Context, scheduleID string, day models.Weekday, block models.TimeBlock) ([]models.Room, error) {
	s.lastScheduleID = scheduleID
	s.lastDay = day
	return s.items, nil
}

func (s *roomCrudStub) Create(ctx context.Context, room *models.Room) error {
	s.items = append(s.items, *room)
	return nil
}

func (s *roomCrudStub) Update(ctx context.Context, room *models.Room) error {
	for i := range s.items {
		if s.items[i].ID == room.ID {
			s.items[i] = *room
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *roomCrudStub) Delete(ctx context.Context, id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
