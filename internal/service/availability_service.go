package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

type availabilityRepository interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, int, error)
	FindByID(ctx context.Context, id string) (*models.AvailabilityWindow, error)
	Create(ctx context.Context, window *models.AvailabilityWindow) error
	Update(ctx context.Context, window *models.AvailabilityWindow) error
	Delete(ctx context.Context, id string) error
	ReplaceForInstructorDay(ctx context.Context, instructorID string, day models.Weekday, windows []models.AvailabilityWindow) error
}

type availabilityUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// WindowRequest is one availability interval in a write payload.
type WindowRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=AVAILABLE UNAVAILABLE"`
	Note      string `json:"note"`
}

// CreateAvailabilityRequest declares one window for an instructor.
type CreateAvailabilityRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	Day          string `json:"day_of_week" validate:"required"`
	WindowRequest
}

// BulkReplaceRequest swaps all windows of one instructor-day in one write.
type BulkReplaceRequest struct {
	InstructorID string          `json:"instructor_id" validate:"required"`
	Day          string          `json:"day_of_week" validate:"required"`
	Windows      []WindowRequest `json:"windows" validate:"dive"`
}

// AvailabilityService manages instructor availability windows. Instructors
// may only touch their own windows; coordinators and admins may touch any.
type AvailabilityService struct {
	repo      availabilityRepository
	users     availabilityUserReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(repo availabilityRepository, users availabilityUserReader, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns paginated windows.
func (s *AvailabilityService) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, *models.Pagination, error) {
	windows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability windows")
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
	return windows, pagination, nil
}

// Get returns a window by identifier.
func (s *AvailabilityService) Get(ctx context.Context, id string) (*models.AvailabilityWindow, error) {
	window, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability window")
	}
	return window, nil
}

// Create declares a new window for an instructor.
func (s *AvailabilityService) Create(ctx context.Context, actor models.JWTClaims, req CreateAvailabilityRequest) (*models.AvailabilityWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if err := s.authorize(actor, req.InstructorID); err != nil {
		return nil, err
	}
	if err := s.ensureInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	window := &models.AvailabilityWindow{
		ID:           uuid.NewString(),
		InstructorID: req.InstructorID,
		Day:          models.Weekday(req.Day),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Kind:         models.AvailabilityKind(req.Kind),
		Note:         req.Note,
	}
	if err := window.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window")
	}

	if err := s.repo.Create(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability window")
	}
	return window, nil
}

// Update modifies an existing window.
func (s *AvailabilityService) Update(ctx context.Context, actor models.JWTClaims, id string, req WindowRequest) (*models.AvailabilityWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	window, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, window.InstructorID); err != nil {
		return nil, err
	}

	window.StartTime = req.StartTime
	window.EndTime = req.EndTime
	window.Kind = models.AvailabilityKind(req.Kind)
	window.Note = req.Note
	if err := window.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window")
	}

	if err := s.repo.Update(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability window")
	}
	return window, nil
}

// Delete removes a window.
func (s *AvailabilityService) Delete(ctx context.Context, actor models.JWTClaims, id string) error {
	window, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, window.InstructorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability window")
	}
	return nil
}

// BulkReplace swaps every window of one instructor-day for the given set in
// a single transaction. An empty set clears the day.
func (s *AvailabilityService) BulkReplace(ctx context.Context, actor models.JWTClaims, req BulkReplaceRequest) ([]models.AvailabilityWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk availability payload")
	}
	if err := s.authorize(actor, req.InstructorID); err != nil {
		return nil, err
	}
	if err := s.ensureInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	day := models.Weekday(req.Day)
	windows := make([]models.AvailabilityWindow, 0, len(req.Windows))
	for _, w := range req.Windows {
		window := models.AvailabilityWindow{
			ID:           uuid.NewString(),
			InstructorID: req.InstructorID,
			Day:          day,
			StartTime:    w.StartTime,
			EndTime:      w.EndTime,
			Kind:         models.AvailabilityKind(w.Kind),
			Note:         w.Note,
		}
		if err := window.Validate(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window")
		}
		windows = append(windows, window)
	}

	if err := s.repo.ReplaceForInstructorDay(ctx, req.InstructorID, day, windows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace availability windows")
	}
	s.logger.Info("availability windows replaced",
		zap.String("instructor_id", req.InstructorID),
		zap.String("day", req.Day),
		zap.Int("windows", len(windows)))
	return windows, nil
}

func (s *AvailabilityService) authorize(actor models.JWTClaims, instructorID string) error {
	if actor.Role == models.RoleInstructor && actor.UserID != instructorID {
		return appErrors.Clone(appErrors.ErrForbidden, "instructors may only manage their own availability")
	}
	return nil
}

func (s *AvailabilityService) ensureInstructor(ctx context.Context, instructorID string) error {
	user, err := s.users.FindByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if user.Role != models.RoleInstructor {
		return appErrors.Clone(appErrors.ErrValidation, "availability windows belong to instructor accounts")
	}
	return nil
}
