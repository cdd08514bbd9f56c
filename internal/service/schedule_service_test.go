package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

func TestScheduleServiceCreateStartsAsDraft(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{})

	schedule, err := fx.service.Create(context.Background(), "user-1", CreateScheduleRequest{
		Name:     "Fall 2026",
		Semester: "2026-2",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStateDraft, schedule.State)
	assert.Equal(t, "user-1", schedule.CreatedBy)
	assert.NotEmpty(t, schedule.ID)
}

func TestScheduleServiceCreateValidatesPayload(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{})

	_, err := fx.service.Create(context.Background(), "user-1", CreateScheduleRequest{Name: "no semester"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceGenerateRunsDetectionPass(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{
		generation: &GenerationResult{ScheduleID: "sched-1", SessionsPlanned: 4, SessionsAssigned: 3, SessionsUnplaced: 1},
		detected: []models.Conflict{
			{ID: "c-1", Kind: models.ConflictCapacity},
		},
	})

	resp, err := fx.service.Generate(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, 4, resp.SessionsPlanned)
	assert.Equal(t, 3, resp.SessionsAssigned)
	assert.Equal(t, 1, resp.SessionsUnplaced)
	assert.Equal(t, 1, resp.ConflictsDetected)
	assert.Equal(t, models.ScheduleStateGenerated, resp.State)
	assert.Contains(t, fx.cache.deleted, fmt.Sprintf(statsCacheKeyFormat, "sched-1"))
}

func TestScheduleServiceGeneratePropagatesEngineErrors(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{
		generateErr: appErrors.Clone(appErrors.ErrConflict, "schedule in state APPROVED cannot be regenerated"),
	})

	_, err := fx.service.Generate(context.Background(), "sched-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fx.cache.deleted, "cache stays intact when generation fails")
}

func TestScheduleServiceResolveReturnsSummary(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{
		resolution: &ResolutionResult{ScheduleID: "sched-1", Attempted: 3, Resolved: 2, Unresolved: 1},
	})

	resp, err := fx.service.Resolve(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempted)
	assert.Equal(t, 2, resp.Resolved)
	assert.Equal(t, 1, resp.Unresolved)
	assert.Contains(t, fx.cache.deleted, fmt.Sprintf(statsCacheKeyFormat, "sched-1"))
}

func TestScheduleServiceStatsComputesOccupancy(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{
		assignmentStats: [4]int{16, 15, 6, 8},
		conflictCounts:  [2]int{4, 1},
	})

	stats, err := fx.service.Stats(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, 16, stats.TotalAssignments)
	assert.Equal(t, 15, stats.ActiveAssignments)
	assert.Equal(t, 4, stats.TotalConflicts)
	assert.Equal(t, 1, stats.ResolvedConflicts)
	assert.Equal(t, 6, stats.RoomsUsed)
	assert.Equal(t, 8, stats.InstructorsAssigned)
	assert.InDelta(t, 50.0, stats.OccupancyPercent, 0.001, "15 of 30 weekly slots")
	assert.Len(t, fx.cache.stored, 1, "fresh stats get cached")
}

func TestScheduleServiceStatsServedFromCache(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{})
	cached := models.ScheduleStats{TotalAssignments: 99, OccupancyPercent: 12.5}
	fx.cache.seed(fmt.Sprintf(statsCacheKeyFormat, "sched-1"), cached)

	stats, err := fx.service.Stats(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, 99, stats.TotalAssignments)
	assert.Empty(t, fx.cache.stored, "cache hit skips recomputation")
}

func TestScheduleServiceStatsScheduleNotFound(t *testing.T) {
	fx := newScheduleFixture(t, scheduleFixtureConfig{noSchedule: true})

	_, err := fx.service.Stats(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type scheduleFixtureConfig struct {
	noSchedule      bool
	generation      *GenerationResult
	generateErr     error
	detected        []models.Conflict
	resolution      *ResolutionResult
	assignmentStats [4]int
	conflictCounts  [2]int
}

type scheduleFixture struct {
	repo    *scheduleCrudStub
	cache   *statsCacheStub
	service *ScheduleService
}

func newScheduleFixture(t *testing.T, cfg scheduleFixtureConfig) *scheduleFixture {
	t.Helper()

	repo := &scheduleCrudStub{missing: cfg.noSchedule}
	cache := newStatsCacheStub()
	generation := cfg.generation
	if generation == nil {
		generation = &GenerationResult{ScheduleID: "sched-1"}
	}
	resolution := cfg.resolution
	if resolution == nil {
		resolution = &ResolutionResult{ScheduleID: "sched-1"}
	}

	return &scheduleFixture{
		repo:  repo,
		cache: cache,
		service: NewScheduleService(
			repo,
			scheduleStatsStub{counts: cfg.assignmentStats},
			conflictStatsStub{counts: cfg.conflictCounts},
			generatorStub{result: generation, err: cfg.generateErr},
			detectorStub{conflicts: cfg.detected},
			resolverStub{result: resolution},
			cache,
			time.Minute,
			nil,
			zap.NewNop(),
		),
	}
}

type scheduleCrudStub struct {
	missing bool
	items   []models.Schedule
}

func (s *scheduleCrudStub) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	return s.items, len(s.items), nil
}

func (s *scheduleCrudStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if s.missing {
		return nil, sql.ErrNoRows
	}
	return &models.Schedule{ID: id, State: models.ScheduleStateGenerated}, nil
}

func (s *scheduleCrudStub) Create(ctx context.Context, schedule *models.Schedule) error {
	s.items = append(s.items, *schedule)
	return nil
}

func (s *scheduleCrudStub) Update(ctx context.Context, schedule *models.Schedule) error {
	return nil
}

func (s *scheduleCrudStub) Delete(ctx context.Context, id string) error {
	return nil
}

type scheduleStatsStub struct {
	counts [4]int
}

func (s scheduleStatsStub) StatsBySchedule(ctx context.Context, scheduleID string) (int, int, int, int, error) {
	return s.counts[0], s.counts[1], s.counts[2], s.counts[3], nil
}

func (s scheduleStatsStub) ListDetailsBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error) {
	return nil, nil
}

type conflictStatsStub struct {
	counts [2]int
}

func (s conflictStatsStub) CountsBySchedule(ctx context.Context, scheduleID string) (int, int, error) {
	return s.counts[0], s.counts[1], nil
}

func (s conflictStatsStub) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error) {
	return nil, 0, nil
}

type generatorStub struct {
	result *GenerationResult
	err    error
}

func (s generatorStub) Generate(ctx context.Context, scheduleID string) (*GenerationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type detectorStub struct {
	conflicts []models.Conflict
}

func (s detectorStub) Detect(ctx context.Context, scheduleID string) ([]models.Conflict, error) {
	return s.conflicts, nil
}

type resolverStub struct {
	result *ResolutionResult
}

func (s resolverStub) Resolve(ctx context.Context, scheduleID string) (*ResolutionResult, error) {
	return s.result, nil
}

type statsCacheStub struct {
	values  map[string][]byte
	stored  []string
	deleted []string
}

func newStatsCacheStub() *statsCacheStub {
	return &statsCacheStub{values: make(map[string][]byte)}
}

func (s *statsCacheStub) seed(key string, value interface{}) {
	raw, _ := json.Marshal(value)
	s.values[key] = raw
}

func (s *statsCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *statsCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	s.stored = append(s.stored, key)
	return nil
}

func (s *statsCacheStub) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	s.deleted = append(s.deleted, key)
	return nil
}
