package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

type generatorScheduleRepo interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	UpdateState(ctx context.Context, id string, state models.ScheduleState) error
}

type generatorCourseReader interface {
	ListActive(ctx context.Context) ([]models.Course, error)
}

type generatorRoomReader interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type generatorInstructorReader interface {
	ListActiveInstructors(ctx context.Context) ([]models.User, error)
}

type generatorAvailabilityReader interface {
	ListAvailableFor(ctx context.Context, instructorID string, day models.Weekday) ([]models.AvailabilityWindow, error)
}

type generatorAssignmentRepo interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	DeleteBySchedule(ctx context.Context, scheduleID string) error
	ExistsForInstructor(ctx context.Context, scheduleID, instructorID string, day models.Weekday, block models.TimeBlock) (bool, error)
	ExistsForRoom(ctx context.Context, scheduleID, roomID string, day models.Weekday, block models.TimeBlock) (bool, error)
	ExistsForCourse(ctx context.Context, scheduleID, courseID string, day models.Weekday, block models.TimeBlock) (bool, error)
}

type generatorConflictWiper interface {
	DeleteBySchedule(ctx context.Context, scheduleID string) error
}

type engineMetrics interface {
	ObserveGeneration(created, unplaced int, duration time.Duration)
	ObserveDetection(found int)
	ObserveResolution(resolved, unresolved int)
}

// GeneratorConfig bounds the random placement search.
type GeneratorConfig struct {
	Days      []models.Weekday
	Blocks    []models.TimeBlock
	MaxTrials int
	// Seed fixes the random source when non-zero; zero seeds from the clock.
	Seed int64
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	if len(c.Days) == 0 {
		c.Days = models.GenerationWeekdays
	}
	if len(c.Blocks) == 0 {
		c.Blocks = models.GenerationTimeBlocks
	}
	if c.MaxTrials <= 0 {
		c.MaxTrials = 1000
	}
	return c
}

// GenerationResult summarizes one generator run.
type GenerationResult struct {
	ScheduleID       string `json:"schedule_id"`
	SessionsPlanned  int    `json:"sessions_planned"`
	SessionsAssigned int    `json:"sessions_assigned"`
	SessionsUnplaced int    `json:"sessions_unplaced"`
	DurationMillis   int64  `json:"duration_ms"`
}

// GeneratorService builds a full timetable for a schedule by bounded random
// trials: for every weekly session of every active course it draws (day,
// block) pairs, picks a free available instructor and the closest-capacity
// suitable room, and persists the assignment once the slot re-validates
// clean.
type GeneratorService struct {
	schedules    generatorScheduleRepo
	courses      generatorCourseReader
	rooms        generatorRoomReader
	instructors  generatorInstructorReader
	availability generatorAvailabilityReader
	assignments  generatorAssignmentRepo
	conflicts    generatorConflictWiper
	locks        *ScheduleLocks
	metrics      engineMetrics
	cfg          GeneratorConfig
	logger       *zap.Logger
}

func NewGeneratorService(
	schedules generatorScheduleRepo,
	courses generatorCourseReader,
	rooms generatorRoomReader,
	instructors generatorInstructorReader,
	availability generatorAvailabilityReader,
	assignments generatorAssignmentRepo,
	conflicts generatorConflictWiper,
	locks *ScheduleLocks,
	metrics engineMetrics,
	cfg GeneratorConfig,
	logger *zap.Logger,
) *GeneratorService {
	if locks == nil {
		locks = NewScheduleLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{
		schedules:    schedules,
		courses:      courses,
		rooms:        rooms,
		instructors:  instructors,
		availability: availability,
		assignments:  assignments,
		conflicts:    conflicts,
		locks:        locks,
		metrics:      metrics,
		cfg:          cfg.withDefaults(),
		logger:       logger,
	}
}

// Generate wipes any previous run for the schedule and rebuilds it from the
// current catalog. It returns the run summary; sessions that exhaust the
// trial budget are reported in SessionsUnplaced, not treated as errors.
func (s *GeneratorService) Generate(ctx context.Context, scheduleID string) (*GenerationResult, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if !schedule.CanGenerate() {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("schedule in state %s cannot be regenerated", schedule.State))
	}

	unlock := s.locks.Lock(scheduleID)
	defer unlock()

	// Conflicts reference assignments, so they go first.
	if err := s.conflicts.DeleteBySchedule(ctx, scheduleID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous conflicts")
	}
	if err := s.assignments.DeleteBySchedule(ctx, scheduleID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous assignments")
	}

	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active courses")
	}
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active rooms")
	}
	instructors, err := s.instructors.ListActiveInstructors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := time.Now()
	result := &GenerationResult{ScheduleID: scheduleID}

	for _, course := range courses {
		for session := 0; session < course.SessionsPerWeek; session++ {
			result.SessionsPlanned++
			if s.placeSession(ctx, rng, scheduleID, course, rooms, instructors) {
				result.SessionsAssigned++
			} else {
				result.SessionsUnplaced++
				s.logger.Warn("session left unplaced after trial budget",
					zap.String("schedule_id", scheduleID),
					zap.String("course_code", course.Code),
					zap.Int("session", session+1),
					zap.Int("max_trials", s.cfg.MaxTrials))
			}
		}
	}

	if err := s.schedules.UpdateState(ctx, scheduleID, models.ScheduleStateGenerated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark schedule generated")
	}

	result.DurationMillis = time.Since(start).Milliseconds()
	if s.metrics != nil {
		s.metrics.ObserveGeneration(result.SessionsAssigned, result.SessionsUnplaced, time.Since(start))
	}
	s.logger.Info("schedule generated",
		zap.String("schedule_id", scheduleID),
		zap.Int("sessions_assigned", result.SessionsAssigned),
		zap.Int("sessions_unplaced", result.SessionsUnplaced),
		zap.Int64("duration_ms", result.DurationMillis))
	return result, nil
}

func (s *GeneratorService) placeSession(ctx context.Context, rng *rand.Rand, scheduleID string, course models.Course, rooms []models.Room, instructors []models.User) bool {
	for trial := 0; trial < s.cfg.MaxTrials; trial++ {
		day := s.cfg.Days[rng.Intn(len(s.cfg.Days))]
		block := s.cfg.Blocks[rng.Intn(len(s.cfg.Blocks))]

		instructor := s.pickInstructor(ctx, rng, scheduleID, instructors, day, block)
		if instructor == nil {
			continue
		}
		room := s.pickRoom(ctx, scheduleID, course, rooms, day, block)
		if room == nil {
			continue
		}
		if !s.slotClean(ctx, scheduleID, course, instructor.ID, *room, day, block) {
			continue
		}

		assignment := &models.Assignment{
			ID:           uuid.NewString(),
			ScheduleID:   scheduleID,
			CourseID:     course.ID,
			InstructorID: instructor.ID,
			RoomID:       room.ID,
			Day:          day,
			Block:        block,
			Active:       true,
		}
		if err := s.assignments.Create(ctx, assignment); err != nil {
			// Unique index rejected the slot under a concurrent writer; the
			// trial simply counts as a miss.
			s.logger.Warn("assignment insert rejected, retrying slot",
				zap.String("schedule_id", scheduleID),
				zap.String("course_code", course.Code),
				zap.Error(err))
			continue
		}
		return true
	}
	return false
}

// pickInstructor draws one instructor at random among those whose declared
// availability covers the block and who are free in the slot. Lookup errors
// count the instructor as unavailable.
func (s *GeneratorService) pickInstructor(ctx context.Context, rng *rand.Rand, scheduleID string, instructors []models.User, day models.Weekday, block models.TimeBlock) *models.User {
	blockStart, blockEnd, err := block.Bounds()
	if err != nil {
		s.logger.Error("generator configured with malformed block", zap.String("block", string(block)), zap.Error(err))
		return nil
	}

	var candidates []models.User
	for _, instructor := range instructors {
		windows, err := s.availability.ListAvailableFor(ctx, instructor.ID, day)
		if err != nil {
			s.logger.Warn("availability lookup failed, instructor skipped",
				zap.String("instructor_id", instructor.ID), zap.Error(err))
			continue
		}
		covered := false
		for _, window := range windows {
			ok, err := window.Covers(blockStart, blockEnd)
			if err != nil {
				s.logger.Warn("malformed availability window skipped",
					zap.String("availability_id", window.ID), zap.Error(err))
				continue
			}
			if ok {
				covered = true
				break
			}
		}
		if !covered {
			continue
		}
		busy, err := s.assignments.ExistsForInstructor(ctx, scheduleID, instructor.ID, day, block)
		if err != nil {
			s.logger.Warn("instructor occupancy lookup failed, instructor skipped",
				zap.String("instructor_id", instructor.ID), zap.Error(err))
			continue
		}
		if !busy {
			candidates = append(candidates, instructor)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	picked := candidates[rng.Intn(len(candidates))]
	return &picked
}

// pickRoom returns the free suitable room whose capacity is closest to the
// course estimate. Ties keep the earlier room in catalog order.
func (s *GeneratorService) pickRoom(ctx context.Context, scheduleID string, course models.Course, rooms []models.Room, day models.Weekday, block models.TimeBlock) *models.Room {
	var best *models.Room
	bestDelta := 0
	for i := range rooms {
		room := rooms[i]
		if room.Capacity < course.EstimatedCapacity {
			continue
		}
		if !course.EquipmentSatisfiedBy(room) {
			continue
		}
		busy, err := s.assignments.ExistsForRoom(ctx, scheduleID, room.ID, day, block)
		if err != nil {
			s.logger.Warn("room occupancy lookup failed, room skipped",
				zap.String("room_id", room.ID), zap.Error(err))
			continue
		}
		if busy {
			continue
		}
		delta := room.Capacity - course.EstimatedCapacity
		if best == nil || delta < bestDelta {
			best = &rooms[i]
			bestDelta = delta
		}
	}
	return best
}

// slotClean re-validates the full slot immediately before the insert. The
// instructor and room were checked during selection, but the re-check keeps
// the write honest if anything moved in between.
func (s *GeneratorService) slotClean(ctx context.Context, scheduleID string, course models.Course, instructorID string, room models.Room, day models.Weekday, block models.TimeBlock) bool {
	if room.Capacity < course.EstimatedCapacity {
		return false
	}
	if !course.EquipmentSatisfiedBy(room) {
		return false
	}
	busy, err := s.assignments.ExistsForInstructor(ctx, scheduleID, instructorID, day, block)
	if err != nil || busy {
		return false
	}
	busy, err = s.assignments.ExistsForRoom(ctx, scheduleID, room.ID, day, block)
	if err != nil || busy {
		return false
	}
	busy, err = s.assignments.ExistsForCourse(ctx, scheduleID, course.ID, day, block)
	if err != nil || busy {
		return false
	}
	return true
}
