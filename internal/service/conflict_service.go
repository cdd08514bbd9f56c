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

type conflictRepository interface {
	FindByID(ctx context.Context, id string) (*models.Conflict, error)
	List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error)
	MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error
}

// ConflictService exposes conflict listings and manual resolution.
type ConflictService struct {
	repo   conflictRepository
	stats  statsInvalidator
	logger *zap.Logger
}

// NewConflictService creates a new conflict service.
func NewConflictService(repo conflictRepository, stats statsInvalidator, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{repo: repo, stats: stats, logger: logger}
}

// List returns paginated conflicts.
func (s *ConflictService) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, *models.Pagination, error) {
	conflicts, total, err := s.repo.List(ctx, filter)
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

// Get returns a conflict by identifier.
func (s *ConflictService) Get(ctx context.Context, id string) (*models.Conflict, error) {
	conflict, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conflict not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflict")
	}
	return conflict, nil
}

// ResolveManual marks a conflict resolved without touching its assignment.
// Coordinators use it after fixing the situation by hand.
func (s *ConflictService) ResolveManual(ctx context.Context, id string) (*models.Conflict, error) {
	conflict, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if conflict.Resolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "conflict is already resolved")
	}

	resolvedAt := time.Now().UTC()
	if err := s.repo.MarkResolved(ctx, id, resolvedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve conflict")
	}
	conflict.Resolved = true
	conflict.ResolvedAt = &resolvedAt

	if s.stats != nil {
		s.stats.InvalidateStats(ctx, conflict.ScheduleID)
	}
	s.logger.Info("conflict resolved manually",
		zap.String("conflict_id", id),
		zap.String("schedule_id", conflict.ScheduleID))
	return conflict, nil
}
