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

func TestAssignmentServiceCreateSuccess(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{})

	assignment, err := fx.service.Create(context.Background(), validAssignmentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.WeekdayMonday, assignment.Day)
	assert.Equal(t, models.Block0800, assignment.Block)
	assert.True(t, assignment.Active)
	assert.Equal(t, []string{"sched-1"}, fx.stats.invalidated, "stats cache must be dropped")
}

func TestAssignmentServiceCreateRejectsUnknownDay(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{})

	req := validAssignmentRequest()
	req.Day = "FUNDAY"
	_, err := fx.service.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceCreateRejectsOccupiedSlot(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{})
	fx.repo.items = []models.Assignment{{
		ID: "a-0", ScheduleID: "sched-1", CourseID: "other", InstructorID: "ins-1",
		RoomID: "other-room", Day: models.WeekdayMonday, Block: models.Block0800,
	}}

	_, err := fx.service.Create(context.Background(), validAssignmentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotOccupied.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fx.stats.invalidated)
}

func TestAssignmentServiceCreateRejectsUndersizedRoom(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{
		room: mockRoom("room-1", "A-101", 10, models.RoomCategoryNormal, false),
	})

	_, err := fx.service.Create(context.Background(), validAssignmentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceCreateRejectsNormalRoomForLabCourse(t *testing.T) {
	labCourse := mockCourse("course-1", "CHE201", 1, 20, true)
	fx := newAssignmentFixture(t, assignmentFixtureConfig{course: labCourse})

	_, err := fx.service.Create(context.Background(), validAssignmentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceCreateRequiresInstructorRole(t *testing.T) {
	coordinator := models.User{ID: "ins-1", Role: models.RoleCoordinator, Active: true}
	fx := newAssignmentFixture(t, assignmentFixtureConfig{user: &coordinator})

	_, err := fx.service.Create(context.Background(), validAssignmentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceUpdateMovesWithinSameSlot(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{})
	// The assignment itself is the only occupant of its slot; a room swap
	// inside the same slot must not be tripped up by its own row.
	fx.repo.items = []models.Assignment{{
		ID: "a-1", ScheduleID: "sched-1", CourseID: "course-1", InstructorID: "ins-1",
		RoomID: "old-room", Day: models.WeekdayMonday, Block: models.Block0800,
	}}

	updated, err := fx.service.Update(context.Background(), "a-1", UpdateAssignmentRequest{
		RoomID: "room-1",
		Day:    "MONDAY",
		Block:  "08:00-10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "room-1", updated.RoomID)
	assert.Equal(t, models.WeekdayMonday, updated.Day)
}

func TestAssignmentServiceUpdateRejectsSlotHeldByAnother(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{})
	fx.repo.items = []models.Assignment{
		{ID: "a-1", ScheduleID: "sched-1", CourseID: "course-1", InstructorID: "ins-1",
			RoomID: "room-1", Day: models.WeekdayMonday, Block: models.Block0800},
		{ID: "a-2", ScheduleID: "sched-1", CourseID: "other", InstructorID: "ins-1",
			RoomID: "other-room", Day: models.WeekdayTuesday, Block: models.Block1000},
	}

	// Moving a-1 onto Tuesday 10:00 collides with a-2's instructor booking.
	_, err := fx.service.Update(context.Background(), "a-1", UpdateAssignmentRequest{
		RoomID: "room-1",
		Day:    "TUESDAY",
		Block:  "10:00-12:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotOccupied.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceSetActiveTogglesAndInvalidates(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{})
	fx.repo.items = []models.Assignment{{
		ID: "a-1", ScheduleID: "sched-1", Active: true,
	}}

	updated, err := fx.service.SetActive(context.Background(), "a-1", false)
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, []string{"sched-1"}, fx.stats.invalidated)
}

func TestAssignmentServiceDeleteNotFound(t *testing.T) {
	fx := newAssignmentFixture(t, assignmentFixtureConfig{})

	err := fx.service.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type assignmentFixtureConfig struct {
	course models.Course
	room   models.Room
	user   *models.User
}

type assignmentFixture struct {
	repo    *manualAssignmentRepoStub
	stats   *statsInvalidatorStub
	service *AssignmentService
}

func newAssignmentFixture(t *testing.T, cfg assignmentFixtureConfig) *assignmentFixture {
	t.Helper()

	course := cfg.course
	if course.ID == "" {
		course = mockCourse("course-1", "MAT101", 1, 30, false)
	}
	room := cfg.room
	if room.ID == "" {
		room = mockRoom("room-1", "A-101", 40, models.RoomCategoryNormal, false)
	}
	user := cfg.user
	if user == nil {
		instructor := mockInstructor("ins-1")
		user = &instructor
	}

	repo := &manualAssignmentRepoStub{}
	stats := &statsInvalidatorStub{}
	return &assignmentFixture{
		repo:  repo,
		stats: stats,
		service: NewAssignmentService(
			repo,
			singleCourseStub{course: course},
			singleRoomStub{room: room},
			singleUserStub{user: *user},
			&scheduleCrudStub{},
			stats,
			nil,
			zap.NewNop(),
		),
	}
}

func validAssignmentRequest() CreateAssignmentRequest {
	return CreateAssignmentRequest{
		ScheduleID:   "sched-1",
		CourseID:     "course-1",
		InstructorID: "ins-1",
		RoomID:       "room-1",
		Day:          "MONDAY",
		Block:        "08:00-10:00",
	}
}

type manualAssignmentRepoStub struct {
	items []models.Assignment
}

func (s *manualAssignmentRepoStub) Create(ctx context.Context, assignment *models.Assignment) error {
	s.items = append(s.items, *assignment)
	return nil
}

func (s *manualAssignmentRepoStub) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			found := s.items[i]
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *manualAssignmentRepoStub) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	return nil, 0, nil
}

func (s *manualAssignmentRepoStub) ExistsForInstructor(ctx context.Context, scheduleID, instructorID string, day models.Weekday, block models.TimeBlock) (bool, error) {
	for _, a := range s.items {
		if a.ScheduleID == scheduleID && a.InstructorID == instructorID && a.Day == day && a.Block == block {
			return true, nil
		}
	}
	return false, nil
}

func (s *manualAssignmentRepoStub) ExistsForRoom(ctx context.Context, scheduleID, roomID string, day models.Weekday, block models.TimeBlock) (bool, error) {
	for _, a := range s.items {
		if a.ScheduleID == scheduleID && a.RoomID == roomID && a.Day == day && a.Block == block {
			return true, nil
		}
	}
	return false, nil
}

func (s *manualAssignmentRepoStub) ExistsForCourse(ctx context.Context, scheduleID, courseID string, day models.Weekday, block models.TimeBlock) (bool, error) {
	for _, a := range s.items {
		if a.ScheduleID == scheduleID && a.CourseID == courseID && a.Day == day && a.Block == block {
			return true, nil
		}
	}
	return false, nil
}

func (s *manualAssignmentRepoStub) UpdateSlot(ctx context.Context, assignmentID, roomID string, day models.Weekday, block models.TimeBlock) error {
	for i := range s.items {
		if s.items[i].ID == assignmentID {
			s.items[i].RoomID = roomID
			s.items[i].Day = day
			s.items[i].Block = block
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *manualAssignmentRepoStub) SetActive(ctx context.Context, assignmentID string, active bool) error {
	for i := range s.items {
		if s.items[i].ID == assignmentID {
			s.items[i].Active = active
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *manualAssignmentRepoStub) Delete(ctx context.Context, id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type singleCourseStub struct {
	course models.Course
}

func (s singleCourseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if id != s.course.ID {
		return nil, sql.ErrNoRows
	}
	course := s.course
	return &course, nil
}

type singleRoomStub struct {
	room models.Room
}

func (s singleRoomStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	room := s.room
	room.ID = id
	return &room, nil
}

type singleUserStub struct {
	user models.User
}

func (s singleUserStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if id != s.user.ID {
		return nil, sql.ErrNoRows
	}
	user := s.user
	return &user, nil
}

type statsInvalidatorStub struct {
	invalidated []string
}

func (s *statsInvalidatorStub) InvalidateStats(ctx context.Context, scheduleID string) {
	s.invalidated = append(s.invalidated, scheduleID)
}
