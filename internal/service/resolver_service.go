package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

type resolverScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type resolverConflictRepo interface {
	ListUnresolvedDetails(ctx context.Context, scheduleID string) ([]models.ConflictDetail, error)
	MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error
}

type resolverRoomReader interface {
	ListResolutionCandidates(ctx context.Context, minCapacity int, category models.RoomCategory, excludeRoomID string) ([]models.Room, error)
}

type resolverAssignmentRepo interface {
	ExistsForRoom(ctx context.Context, scheduleID, roomID string, day models.Weekday, block models.TimeBlock) (bool, error)
	UpdateRoom(ctx context.Context, assignmentID, roomID string) error
}

// ResolutionResult summarizes one resolver pass.
type ResolutionResult struct {
	ScheduleID string `json:"schedule_id"`
	Attempted  int    `json:"attempted"`
	Resolved   int    `json:"resolved"`
	Unresolved int    `json:"unresolved"`
}

// ResolverService walks the unresolved conflicts of a schedule in detection
// order and repairs CAPACITY and EQUIPMENT conflicts by moving the
// assignment to another room. Candidates come back sorted by capacity then
// id and the first free one wins, so a rerun over the same data lands on
// the same rooms. Conflicts of other kinds stay open for manual handling.
type ResolverService struct {
	schedules   resolverScheduleReader
	conflicts   resolverConflictRepo
	rooms       resolverRoomReader
	assignments resolverAssignmentRepo
	locks       *ScheduleLocks
	metrics     engineMetrics
	logger      *zap.Logger
}

func NewResolverService(
	schedules resolverScheduleReader,
	conflicts resolverConflictRepo,
	rooms resolverRoomReader,
	assignments resolverAssignmentRepo,
	locks *ScheduleLocks,
	metrics engineMetrics,
	logger *zap.Logger,
) *ResolverService {
	if locks == nil {
		locks = NewScheduleLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolverService{
		schedules:   schedules,
		conflicts:   conflicts,
		rooms:       rooms,
		assignments: assignments,
		locks:       locks,
		metrics:     metrics,
		logger:      logger,
	}
}

// Resolve makes a single pass over the schedule's open conflicts. A
// conflict that finds no free replacement room simply stays unresolved;
// only storage failures abort the pass.
func (s *ResolverService) Resolve(ctx context.Context, scheduleID string) (*ResolutionResult, error) {
	if _, err := s.schedules.FindByID(ctx, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	unlock := s.locks.Lock(scheduleID)
	defer unlock()

	open, err := s.conflicts.ListUnresolvedDetails(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unresolved conflicts")
	}

	result := &ResolutionResult{ScheduleID: scheduleID}
	for _, conflict := range open {
		if conflict.Kind != models.ConflictCapacity && conflict.Kind != models.ConflictEquipment {
			continue
		}
		result.Attempted++

		room, err := s.findReplacement(ctx, conflict)
		if err != nil {
			return nil, err
		}
		if room == nil {
			result.Unresolved++
			s.logger.Warn("no replacement room for conflict",
				zap.String("conflict_id", conflict.ID),
				zap.String("kind", string(conflict.Kind)),
				zap.String("course_code", conflict.CourseCode))
			continue
		}

		if err := s.assignments.UpdateRoom(ctx, conflict.AssignmentID, room.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move assignment")
		}
		if err := s.conflicts.MarkResolved(ctx, conflict.ID, time.Now().UTC()); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark conflict resolved")
		}
		result.Resolved++
		s.logger.Info("conflict resolved",
			zap.String("conflict_id", conflict.ID),
			zap.String("kind", string(conflict.Kind)),
			zap.String("course_code", conflict.CourseCode),
			zap.String("room_id", room.ID))
	}

	if s.metrics != nil {
		s.metrics.ObserveResolution(result.Resolved, result.Unresolved)
	}
	s.logger.Info("conflict resolution completed",
		zap.String("schedule_id", scheduleID),
		zap.Int("attempted", result.Attempted),
		zap.Int("resolved", result.Resolved),
		zap.Int("unresolved", result.Unresolved))
	return result, nil
}

// findReplacement returns the first free candidate room for the conflict's
// slot, or nil when none fits. CAPACITY conflicts search within the current
// room's category; EQUIPMENT conflicts search labs and additionally require
// a projector.
func (s *ResolverService) findReplacement(ctx context.Context, conflict models.ConflictDetail) (*models.Room, error) {
	category := conflict.RoomCategory
	if conflict.Kind == models.ConflictEquipment {
		category = models.RoomCategoryLab
	}

	candidates, err := s.rooms.ListResolutionCandidates(ctx, conflict.CourseCapacity, category, conflict.RoomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate rooms")
	}

	for i := range candidates {
		candidate := candidates[i]
		if conflict.Kind == models.ConflictEquipment && !candidate.HasProjector {
			continue
		}
		busy, err := s.assignments.ExistsForRoom(ctx, conflict.ScheduleID, candidate.ID, conflict.Day, conflict.Block)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room occupancy")
		}
		if !busy {
			return &candidates[i], nil
		}
	}
	return nil, nil
}
