package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest captures fields for creating courses.
type CreateCourseRequest struct {
	Code              string `json:"code" validate:"required"`
	Name              string `json:"name" validate:"required"`
	Credits           int    `json:"credits" validate:"required,min=1"`
	Type              string `json:"type" validate:"required,oneof=MANDATORY ELECTIVE OPTIONAL"`
	SessionsPerWeek   int    `json:"sessions_per_week" validate:"required,min=1,max=6"`
	SessionDuration   int    `json:"session_duration" validate:"required,min=1"`
	EstimatedCapacity int    `json:"estimated_capacity" validate:"required,min=1"`
	RequiredEquipment string `json:"required_equipment"`
	RequiresLab       bool   `json:"requires_lab"`
	Active            *bool  `json:"active"`
}

// UpdateCourseRequest modifies course fields.
type UpdateCourseRequest struct {
	Code              string `json:"code" validate:"required"`
	Name              string `json:"name" validate:"required"`
	Credits           int    `json:"credits" validate:"required,min=1"`
	Type              string `json:"type" validate:"required,oneof=MANDATORY ELECTIVE OPTIONAL"`
	SessionsPerWeek   int    `json:"sessions_per_week" validate:"required,min=1,max=6"`
	SessionDuration   int    `json:"session_duration" validate:"required,min=1"`
	EstimatedCapacity int    `json:"estimated_capacity" validate:"required,min=1"`
	RequiredEquipment string `json:"required_equipment"`
	RequiresLab       bool   `json:"requires_lab"`
	Active            *bool  `json:"active"`
}

// CourseService handles course catalog workflows.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated courses.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
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
	return courses, pagination, nil
}

// Get returns a course by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a new course ensuring code uniqueness. The requires-lab flag
// is derived from the equipment text when not set explicitly.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	course := &models.Course{
		ID:                uuid.NewString(),
		Code:              req.Code,
		Name:              req.Name,
		Credits:           req.Credits,
		Type:              models.CourseType(req.Type),
		SessionsPerWeek:   req.SessionsPerWeek,
		SessionDuration:   req.SessionDuration,
		EstimatedCapacity: req.EstimatedCapacity,
		RequiredEquipment: req.RequiredEquipment,
		RequiresLab:       req.RequiresLab,
		Active:            active,
	}
	course.Normalize()

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	course.Code = req.Code
	course.Name = req.Name
	course.Credits = req.Credits
	course.Type = models.CourseType(req.Type)
	course.SessionsPerWeek = req.SessionsPerWeek
	course.SessionDuration = req.SessionDuration
	course.EstimatedCapacity = req.EstimatedCapacity
	course.RequiredEquipment = req.RequiredEquipment
	course.RequiresLab = req.RequiresLab
	if req.Active != nil {
		course.Active = *req.Active
	}
	course.Normalize()

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
