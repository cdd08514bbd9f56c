package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

func TestDetectorServiceDetectCapacityOverflow(t *testing.T) {
	fx := newDetectorFixture(t, []models.AssignmentDetail{
		mockDetail("a-1", detailOpts{courseCapacity: 50, roomCapacity: 30}),
	})

	found, err := fx.service.Detect(context.Background(), "sched-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, models.ConflictCapacity, found[0].Kind)
	assert.Equal(t, "a-1", found[0].AssignmentID)
	assert.False(t, found[0].Resolved)
	assert.False(t, found[0].DetectedAt.IsZero())
	assert.Len(t, fx.conflicts.created, 1, "conflicts must be persisted")
}

func TestDetectorServiceDetectMissingLabEquipment(t *testing.T) {
	fx := newDetectorFixture(t, []models.AssignmentDetail{
		// Lab course in a normal room.
		mockDetail("a-1", detailOpts{courseCapacity: 20, roomCapacity: 30, requiresLab: true}),
		// Lab course in a lab without projector still fails.
		mockDetail("a-2", detailOpts{courseCapacity: 20, roomCapacity: 30, requiresLab: true, roomCategory: models.RoomCategoryLab}),
		// Lab course in a projector-equipped lab is fine.
		mockDetail("a-3", detailOpts{courseCapacity: 20, roomCapacity: 30, requiresLab: true, roomCategory: models.RoomCategoryLab, roomProjector: true}),
	})

	found, err := fx.service.Detect(context.Background(), "sched-1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	for _, c := range found {
		assert.Equal(t, models.ConflictEquipment, c.Kind)
	}
	assert.Equal(t, "a-1", found[0].AssignmentID)
	assert.Equal(t, "a-2", found[1].AssignmentID)
}

func TestDetectorServiceDetectBothKindsOnOneAssignment(t *testing.T) {
	fx := newDetectorFixture(t, []models.AssignmentDetail{
		mockDetail("a-1", detailOpts{courseCapacity: 60, roomCapacity: 30, requiresLab: true}),
	})

	found, err := fx.service.Detect(context.Background(), "sched-1")
	require.NoError(t, err)
	require.Len(t, found, 2, "capacity and equipment checks are independent")
	assert.Equal(t, models.ConflictCapacity, found[0].Kind)
	assert.Equal(t, models.ConflictEquipment, found[1].Kind)
}

func TestDetectorServiceDetectSkipsInactiveAssignments(t *testing.T) {
	fx := newDetectorFixture(t, []models.AssignmentDetail{
		mockDetail("a-1", detailOpts{courseCapacity: 50, roomCapacity: 30, inactive: true}),
	})

	found, err := fx.service.Detect(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, fx.conflicts.created)
}

func TestDetectorServiceDetectCleanSchedule(t *testing.T) {
	fx := newDetectorFixture(t, []models.AssignmentDetail{
		mockDetail("a-1", detailOpts{courseCapacity: 20, roomCapacity: 30}),
	})

	found, err := fx.service.Detect(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDetectorServiceDetectScheduleNotFound(t *testing.T) {
	fx := newDetectorFixture(t, nil)
	fx.schedules.missing = true

	_, err := fx.service.Detect(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type detectorFixture struct {
	schedules *scheduleRepoEngineStub
	conflicts *conflictWriterStub
	service   *DetectorService
}

func newDetectorFixture(t *testing.T, details []models.AssignmentDetail) *detectorFixture {
	t.Helper()

	schedules := &scheduleRepoEngineStub{state: models.ScheduleStateGenerated}
	conflicts := &conflictWriterStub{}
	return &detectorFixture{
		schedules: schedules,
		conflicts: conflicts,
		service: NewDetectorService(
			schedules,
			detailReaderStub{items: details},
			conflicts,
			&metricsRecorderStub{},
			zap.NewNop(),
		),
	}
}

type detailOpts struct {
	courseCapacity int
	roomCapacity   int
	requiresLab    bool
	roomCategory   models.RoomCategory
	roomProjector  bool
	inactive       bool
}

func mockDetail(assignmentID string, opts detailOpts) models.AssignmentDetail {
	category := opts.roomCategory
	if category == "" {
		category = models.RoomCategoryNormal
	}
	return models.AssignmentDetail{
		Assignment: models.Assignment{
			ID:         assignmentID,
			ScheduleID: "sched-1",
			Day:        models.WeekdayMonday,
			Block:      models.Block0800,
			Active:     !opts.inactive,
		},
		CourseCode:       "MAT101",
		CourseCapacity:   opts.courseCapacity,
		RequiresLab:      opts.requiresLab,
		RoomName:         "A-101",
		RoomCapacity:     opts.roomCapacity,
		RoomCategory:     category,
		RoomHasProjector: opts.roomProjector,
	}
}

type detailReaderStub struct {
	items []models.AssignmentDetail
}

func (s detailReaderStub) ListDetailsBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error) {
	return s.items, nil
}

type conflictWriterStub struct {
	created []models.Conflict
}

func (s *conflictWriterStub) Create(ctx context.Context, conflict *models.Conflict) error {
	s.created = append(s.created, *conflict)
	return nil
}
