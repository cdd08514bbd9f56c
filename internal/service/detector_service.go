package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

type detectorScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type detectorAssignmentReader interface {
	ListDetailsBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error)
}

type detectorConflictWriter interface {
	Create(ctx context.Context, conflict *models.Conflict) error
}

// DetectorService scans the active assignments of a schedule and records a
// conflict row for each room too small for its course and each lab course
// placed in a room that cannot satisfy its equipment. Slot collisions never
// reach the detector; the unique indexes reject them at write time.
// Detection is additive and never mutates assignments.
type DetectorService struct {
	schedules   detectorScheduleReader
	assignments detectorAssignmentReader
	conflicts   detectorConflictWriter
	metrics     engineMetrics
	logger      *zap.Logger
}

func NewDetectorService(
	schedules detectorScheduleReader,
	assignments detectorAssignmentReader,
	conflicts detectorConflictWriter,
	metrics engineMetrics,
	logger *zap.Logger,
) *DetectorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetectorService{
		schedules:   schedules,
		assignments: assignments,
		conflicts:   conflicts,
		metrics:     metrics,
		logger:      logger,
	}
}

// Detect runs a full pass over the schedule and returns the conflicts it
// recorded.
func (s *DetectorService) Detect(ctx context.Context, scheduleID string) ([]models.Conflict, error) {
	if _, err := s.schedules.FindByID(ctx, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	details, err := s.assignments.ListDetailsBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	var found []models.Conflict
	scanned := 0
	for _, d := range details {
		if !d.Active {
			continue
		}
		scanned++
		if d.CourseCapacity > d.RoomCapacity {
			found = append(found, s.newConflict(scheduleID, d.ID, models.ConflictCapacity,
				fmt.Sprintf("room %s seats %d but course %s expects %d students",
					d.RoomName, d.RoomCapacity, d.CourseCode, d.CourseCapacity)))
		}
		labOK := d.RoomCategory == models.RoomCategoryLab && d.RoomHasProjector
		if d.RequiresLab && !labOK {
			found = append(found, s.newConflict(scheduleID, d.ID, models.ConflictEquipment,
				fmt.Sprintf("course %s needs a lab with projector but room %s cannot provide it",
					d.CourseCode, d.RoomName)))
		}
	}

	for i := range found {
		if err := s.conflicts.Create(ctx, &found[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record conflict")
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveDetection(len(found))
	}
	s.logger.Info("conflict detection completed",
		zap.String("schedule_id", scheduleID),
		zap.Int("assignments_scanned", scanned),
		zap.Int("conflicts_found", len(found)))
	return found, nil
}

func (s *DetectorService) newConflict(scheduleID, assignmentID string, kind models.ConflictKind, description string) models.Conflict {
	return models.Conflict{
		ID:           uuid.NewString(),
		ScheduleID:   scheduleID,
		AssignmentID: assignmentID,
		Kind:         kind,
		Description:  description,
		DetectedAt:   time.Now().UTC(),
	}
}
