package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/dto"
	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type scheduleAssignmentStats interface {
	StatsBySchedule(ctx context.Context, scheduleID string) (total, active, roomsUsed, instructorsAssigned int, err error)
	ListDetailsBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error)
}

type scheduleConflictStats interface {
	CountsBySchedule(ctx context.Context, scheduleID string) (total, resolved int, err error)
	List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type timetableGenerator interface {
	Generate(ctx context.Context, scheduleID string) (*GenerationResult, error)
}

type conflictDetector interface {
	Detect(ctx context.Context, scheduleID string) ([]models.Conflict, error)
}

type conflictResolver interface {
	Resolve(ctx context.Context, scheduleID string) (*ResolutionResult, error)
}

// CreateScheduleRequest captures fields for creating schedules.
type CreateScheduleRequest struct {
	Name     string `json:"name" validate:"required"`
	Semester string `json:"semester" validate:"required"`
}

// UpdateScheduleRequest modifies schedule fields.
type UpdateScheduleRequest struct {
	Name     string `json:"name" validate:"required"`
	Semester string `json:"semester" validate:"required"`
	State    string `json:"state" validate:"required,oneof=DRAFT GENERATED APPROVED ACTIVE INACTIVE"`
}

// weeklySlots is the denominator for occupancy: the full working week of
// the block vocabulary, not just the generator's subset.
const weeklySlots = 5 * 6

const statsCacheKeyFormat = "schedule:stats:%s"

// ScheduleService handles schedule lifecycle and orchestrates the engine:
// generate runs the generator then a detection pass, resolve runs the
// resolver. Statistics are cached in redis and invalidated by any of the
// three.
type ScheduleService struct {
	repo        scheduleRepository
	assignments scheduleAssignmentStats
	conflicts   scheduleConflictStats
	generator   timetableGenerator
	detector    conflictDetector
	resolver    conflictResolver
	cache       statsCache
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(
	repo scheduleRepository,
	assignments scheduleAssignmentStats,
	conflicts scheduleConflictStats,
	generator timetableGenerator,
	detector conflictDetector,
	resolver conflictResolver,
	cache statsCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ScheduleService{
		repo:        repo,
		assignments: assignments,
		conflicts:   conflicts,
		generator:   generator,
		detector:    detector,
		resolver:    resolver,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// List returns paginated schedules.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return schedules, pagination, nil
}

// Get returns a schedule by identifier.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// Create adds a new schedule in DRAFT state.
func (s *ScheduleService) Create(ctx context.Context, createdBy string, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	schedule := &models.Schedule{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Semester:  req.Semester,
		State:     models.ScheduleStateDraft,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return schedule, nil
}

// Update modifies name, semester and state.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule.Name = req.Name
	schedule.Semester = req.Semester
	schedule.State = models.ScheduleState(req.State)

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	s.invalidateStats(ctx, id)
	return schedule, nil
}

// Delete removes a schedule and everything hanging off it.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateStats(ctx, id)
	return nil
}

// Generate rebuilds the timetable and immediately runs a detection pass.
// A partially filled timetable is a success; the counts tell the caller how
// far the run got.
func (s *ScheduleService) Generate(ctx context.Context, id string) (*dto.GenerateResponse, error) {
	result, err := s.generator.Generate(ctx, id)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.detector.Detect(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, id)

	return &dto.GenerateResponse{
		ScheduleID:        id,
		State:             models.ScheduleStateGenerated,
		SessionsPlanned:   result.SessionsPlanned,
		SessionsAssigned:  result.SessionsAssigned,
		SessionsUnplaced:  result.SessionsUnplaced,
		ConflictsDetected: len(conflicts),
		Conflicts:         conflicts,
		DurationMillis:    result.DurationMillis,
	}, nil
}

// Resolve runs one resolver pass over the schedule's open conflicts.
func (s *ScheduleService) Resolve(ctx context.Context, id string) (*dto.ResolveResponse, error) {
	result, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, id)

	return &dto.ResolveResponse{
		ScheduleID: result.ScheduleID,
		Attempted:  result.Attempted,
		Resolved:   result.Resolved,
		Unresolved: result.Unresolved,
	}, nil
}

// Stats aggregates occupancy and conflict figures, served from cache when
// fresh.
func (s *ScheduleService) Stats(ctx context.Context, id string) (*models.ScheduleStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	key := fmt.Sprintf(statsCacheKeyFormat, id)
	if s.cache != nil {
		var cached models.ScheduleStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	total, active, roomsUsed, instructorsAssigned, err := s.assignments.StatsBySchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate assignment stats")
	}
	conflictsTotal, conflictsResolved, err := s.conflicts.CountsBySchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate conflict stats")
	}

	stats := &models.ScheduleStats{
		TotalAssignments:    total,
		ActiveAssignments:   active,
		TotalConflicts:      conflictsTotal,
		ResolvedConflicts:   conflictsResolved,
		OccupancyPercent:    float64(active) / float64(weeklySlots) * 100,
		RoomsUsed:           roomsUsed,
		InstructorsAssigned: instructorsAssigned,
		GeneratedAt:         time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache schedule stats", zap.String("schedule_id", id), zap.Error(err))
		}
	}
	return stats, nil
}

// Assignments lists the joined assignment rows of a schedule.
func (s *ScheduleService) Assignments(ctx context.Context, id string) ([]models.AssignmentDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	details, err := s.assignments.ListDetailsBySchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return details, nil
}

// Conflicts lists the schedule's conflicts with optional filters.
func (s *ScheduleService) Conflicts(ctx context.Context, id string, filter models.ConflictFilter) ([]models.Conflict, *models.Pagination, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, nil, err
	}
	filter.ScheduleID = id
	conflicts, total, err := s.conflicts.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conflicts")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return conflicts, pagination, nil
}

// InvalidateStats drops the cached stats entry for one schedule. Assignment
// writes outside this service call it to keep readers honest.
func (s *ScheduleService) InvalidateStats(ctx context.Context, id string) {
	s.invalidateStats(ctx, id)
}

func (s *ScheduleService) invalidateStats(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf(statsCacheKeyFormat, id)); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.String("schedule_id", id), zap.Error(err))
	}
}
